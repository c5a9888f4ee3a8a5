package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/project-vitals/internal/core/aggregation"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
)

// WriterAdapter implements storage.RecordWriter and
// storage.MedicalResourceWriter. Each call runs in one transaction.
type WriterAdapter struct {
	db *sql.DB
}

// NewWriterAdapter creates a new WriterAdapter sharing the given connection.
func NewWriterAdapter(db *sql.DB) *WriterAdapter {
	return &WriterAdapter{db: db}
}

// InsertRecords inserts every row or none.
func (a *WriterAdapter) InsertRecords(ctx context.Context, rows []aggregation.RawRecordRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record insert: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, queryInsertRecord)
	if err != nil {
		return fmt.Errorf("record insert: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		payload, segments, samples, err := encodeRecordColumns(r)
		if err != nil {
			return err
		}
		result, err := stmt.ExecContext(ctx,
			r.UUID,
			int64(r.RecordType),
			r.DataOrigin,
			r.StartTime,
			r.EndTime,
			r.StartZoneOffset,
			r.EndZoneOffset,
			payload,
			segments,
			samples,
		)
		if err != nil {
			return fmt.Errorf("record insert %s: %w", r.UUID, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("record insert %s: check rows: %w", r.UUID, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("record insert %s: %w", r.UUID, storage.ErrDuplicate)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record insert: commit: %w", err)
	}

	slog.Debug("[WriterAdapter] Inserted records", "count", len(rows))
	return nil
}

// UpsertMedicalResources inserts or replaces every resource or none.
func (a *WriterAdapter) UpsertMedicalResources(ctx context.Context, resources []storage.MedicalResource) error {
	if len(resources) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("medical upsert: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, queryUpsertMedicalResource)
	if err != nil {
		return fmt.Errorf("medical upsert: prepare: %w", err)
	}
	defer stmt.Close()

	for _, m := range resources {
		_, err := stmt.ExecContext(ctx,
			m.ID,
			int64(m.ResourceType),
			m.DataSourceID,
			m.FHIRVersion,
			[]byte(m.Data),
			m.LastModified,
		)
		if err != nil {
			return fmt.Errorf("medical upsert %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("medical upsert: commit: %w", err)
	}

	slog.Debug("[WriterAdapter] Upserted medical resources", "count", len(resources))
	return nil
}

// encodeRecordColumns renders the JSONB columns of r. Empty segments and
// samples are stored as NULL.
func encodeRecordColumns(r aggregation.RawRecordRow) (payload []byte, segments, samples interface{}, err error) {
	p := r.Payload
	if p == nil {
		p = map[string]interface{}{}
	}
	payload, err = json.Marshal(p)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal payload of record %s: %w", r.UUID, err)
	}

	if len(r.Segments) > 0 {
		out := make([]segmentJSON, len(r.Segments))
		for i, s := range r.Segments {
			out[i] = segmentJSON{Start: s.Start, End: s.End, Kind: s.Kind}
		}
		b, err := json.Marshal(out)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal segments of record %s: %w", r.UUID, err)
		}
		segments = b
	}

	if len(r.Samples) > 0 {
		out := make([]sampleJSON, len(r.Samples))
		for i, s := range r.Samples {
			out[i] = sampleJSON{Time: s.Time, Value: s.Value}
		}
		b, err := json.Marshal(out)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal samples of record %s: %w", r.UUID, err)
		}
		samples = b
	}
	return payload, segments, samples, nil
}
