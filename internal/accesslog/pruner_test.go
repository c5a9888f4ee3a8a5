package accesslog

import (
	"context"
	"errors"
	"testing"
	"time"

	storagemocks "github.com/aevon-lab/project-vitals/internal/mocks/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

func newTestPruner(t *testing.T, opts PrunerOptions) (*Pruner, *storagemocks.AccessLogStore) {
	t.Helper()
	store := storagemocks.NewAccessLogStore(t)
	p := NewPruner(store, opts)
	p.now = func() time.Time { return now }
	return p, store
}

func TestPruner_DrainsUntilShortBatch(t *testing.T) {
	p, store := newTestPruner(t, PrunerOptions{Retention: 24 * time.Hour, BatchSize: 10})
	cutoff := now.Add(-24 * time.Hour)

	store.EXPECT().PruneBefore(mock.Anything, cutoff, 10).Return(int64(10), nil).Twice()
	store.EXPECT().PruneBefore(mock.Anything, cutoff, 10).Return(int64(3), nil).Once()

	require.Equal(t, int64(23), p.drainBacklog(context.Background()))
}

func TestPruner_StopsOnError(t *testing.T) {
	p, store := newTestPruner(t, PrunerOptions{BatchSize: 5})

	store.EXPECT().PruneBefore(mock.Anything, mock.Anything, 5).Return(int64(5), nil).Once()
	store.EXPECT().PruneBefore(mock.Anything, mock.Anything, 5).Return(int64(0), errors.New("boom")).Once()

	require.Equal(t, int64(5), p.drainBacklog(context.Background()))
}

func TestPruner_SafetyLimit(t *testing.T) {
	p, store := newTestPruner(t, PrunerOptions{BatchSize: 1})

	store.EXPECT().PruneBefore(mock.Anything, mock.Anything, 1).Return(int64(1), nil).Times(maxConsecutiveBatches)

	require.Equal(t, int64(maxConsecutiveBatches), p.drainBacklog(context.Background()))
}

func TestPruner_CancelledContextSkipsWork(t *testing.T) {
	p, _ := newTestPruner(t, PrunerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Zero(t, p.drainBacklog(ctx))
}

func TestPruner_StartRunsFinalDrain(t *testing.T) {
	p, store := newTestPruner(t, PrunerOptions{Interval: time.Hour, BatchSize: 10})
	called := make(chan struct{}, 4)
	store.EXPECT().
		PruneBefore(mock.Anything, mock.Anything, 10).
		Run(func(context.Context, time.Time, int) { called <- struct{}{} }).
		Return(int64(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	<-called // initial drain
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pruner did not stop")
	}
	require.Len(t, called, 1, "final drain runs once after cancellation")
}

func TestPrunerOptions_Defaults(t *testing.T) {
	o := PrunerOptions{}.normalized()
	require.Equal(t, time.Hour, o.Interval)
	require.Equal(t, 30*24*time.Hour, o.Retention)
	require.Equal(t, defaultBatchSize, o.BatchSize)
}
