package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/lib/pq"
)

// AccessLogAdapter implements storage.AccessLogStore using PostgreSQL.
// All entries of one RecordReadAccess call are written in a single
// transaction.
type AccessLogAdapter struct {
	db *sql.DB
}

// NewAccessLogAdapter creates a new AccessLogAdapter sharing the given connection.
func NewAccessLogAdapter(db *sql.DB) *AccessLogAdapter {
	return &AccessLogAdapter{db: db}
}

// RecordReadAccess inserts every entry or none.
func (a *AccessLogAdapter) RecordReadAccess(ctx context.Context, entries []storage.AccessLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("access_log insert: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, queryInsertAccessLog)
	if err != nil {
		return fmt.Errorf("access_log insert: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		result, err := stmt.ExecContext(ctx,
			e.ID.String(),
			e.CallerPackage,
			pq.Array(recordTypeCodes(e.RecordTypes)),
			string(e.Operation),
			e.AccessTime,
			pq.Array(nonNil(e.DataOrigins)),
		)
		if err != nil {
			return fmt.Errorf("access_log insert %s: %w", e.ID, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("access_log insert %s: check rows: %w", e.ID, err)
		}
		if rowsAffected != 1 {
			return fmt.Errorf("access_log insert %s: expected 1 row, got %d", e.ID, rowsAffected)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("access_log insert: commit: %w", err)
	}

	slog.Debug("[AccessLogAdapter] Recorded read access", "entries", len(entries))
	return nil
}

// PruneBefore deletes at most limit entries with access_time before cutoff.
func (a *AccessLogAdapter) PruneBefore(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	result, err := a.db.ExecContext(ctx, queryPruneAccessLogs, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("access_log prune: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("access_log prune: check rows: %w", err)
	}
	return n, nil
}
