package accesslog

import (
	"context"
	"log/slog"
	"time"

	"github.com/aevon-lab/project-vitals/internal/core/storage"
)

const (
	defaultBatchSize      = 1000
	maxConsecutiveBatches = 100
	finalDrainTimeout     = 30 * time.Second
)

// PrunerOptions controls retention and batch sizing.
type PrunerOptions struct {
	Interval  time.Duration
	Retention time.Duration
	BatchSize int
}

func (o PrunerOptions) normalized() PrunerOptions {
	n := o
	if n.Interval <= 0 {
		n.Interval = time.Hour
	}
	if n.Retention <= 0 {
		n.Retention = 30 * 24 * time.Hour
	}
	if n.BatchSize <= 0 {
		n.BatchSize = defaultBatchSize
	}
	return n
}

// Pruner deletes expired access log entries on a periodic interval.
// It is stateless: each tick recomputes the cutoff from the clock.
type Pruner struct {
	store storage.AccessLogStore
	opts  PrunerOptions
	now   func() time.Time
}

// NewPruner creates a pruner for store.
func NewPruner(store storage.AccessLogStore, opts PrunerOptions) *Pruner {
	return &Pruner{
		store: store,
		opts:  opts.normalized(),
		now:   time.Now,
	}
}

// Start begins periodic pruning.
// Runs until context is cancelled.
func (p *Pruner) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	slog.Info("[AccessLogPruner] Starting",
		"interval", p.opts.Interval,
		"retention", p.opts.Retention,
		"batch_size", p.opts.BatchSize,
	)

	p.drainBacklog(ctx)

	for {
		select {
		case <-ticker.C:
			p.drainBacklog(ctx)
		case <-ctx.Done():
			slog.Info("[AccessLogPruner] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), finalDrainTimeout)
			defer cancel()

			p.drainBacklog(shutdownCtx)
			slog.Info("[AccessLogPruner] Final drain complete")
			return nil
		}
	}
}

// drainBacklog deletes expired entries in batches until a batch comes back
// short. Returns the number of entries deleted.
func (p *Pruner) drainBacklog(ctx context.Context) int64 {
	cutoff := p.now().Add(-p.opts.Retention)
	var total int64

	for batchCount := 0; batchCount < maxConsecutiveBatches; batchCount++ {
		select {
		case <-ctx.Done():
			slog.Info("[AccessLogPruner] Drain interrupted by context cancellation",
				"batches_processed", batchCount,
				"pruned", total,
			)
			return total
		default:
		}

		n, err := p.store.PruneBefore(ctx, cutoff, p.opts.BatchSize)
		if err != nil {
			slog.Error("[AccessLogPruner] Prune failed",
				"error", err,
				"batch_number", batchCount+1,
			)
			return total
		}
		total += n

		if n < int64(p.opts.BatchSize) {
			if total > 0 {
				slog.Info("[AccessLogPruner] Pruned expired entries",
					"cutoff", cutoff,
					"pruned", total,
					"batches", batchCount+1,
				)
			}
			return total
		}
	}

	slog.Warn("[AccessLogPruner] Max consecutive batches reached, pausing drain",
		"max_batches", maxConsecutiveBatches,
		"pruned", total,
		"note", "Will resume on next tick",
	)
	return total
}
