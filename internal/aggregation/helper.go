package aggregation

import (
	"context"
	"log/slog"
	"sort"
	"time"

	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultWorkerCount = 4

// AggregateDataRequest asks for several aggregation metrics over one window.
type AggregateDataRequest struct {
	CallerPackage   string
	AggregationIDs  []coreagg.AggregationID
	Window          coreagg.TimeWindow
	GroupBy         *coreagg.GroupBySpec
	DataOrigins     []string
	RecordAccessLog bool
}

// AggregateBucket holds every requested metric's result for one bucket.
type AggregateBucket struct {
	Start   time.Time                                         `json:"start"`
	End     time.Time                                         `json:"end"`
	Results map[coreagg.AggregationID]coreagg.AggregateResult `json:"results"`
}

// AggregateDataResponse is positional: Buckets[i] is the i-th bucket of the
// grouping, in the grouping's order.
type AggregateDataResponse struct {
	Buckets []AggregateBucket `json:"buckets"`
}

// HelperOptions configures a FitnessRecordAggregateHelper.
type HelperOptions struct {
	WorkerCount      int
	RecordAccessLogs bool
	Request          RequestOptions
}

func (o HelperOptions) normalized() HelperOptions {
	n := o
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	n.Request = n.Request.normalized()
	return n
}

// FitnessRecordAggregateHelper fans a multi-metric request out into one
// AggregateRecordRequest per metric and reassembles the results.
type FitnessRecordAggregateHelper struct {
	registry   *coreagg.Registry
	source     storage.RowSource
	priorities coreagg.PriorityProvider
	accessLogs storage.AccessLogStore
	opts       HelperOptions
	now        func() time.Time
	newID      func() uuid.UUID
}

// NewFitnessRecordAggregateHelper wires the helper. priorities and
// accessLogs may be nil.
func NewFitnessRecordAggregateHelper(
	registry *coreagg.Registry,
	source storage.RowSource,
	priorities coreagg.PriorityProvider,
	accessLogs storage.AccessLogStore,
	opts HelperOptions,
) *FitnessRecordAggregateHelper {
	return &FitnessRecordAggregateHelper{
		registry:   registry,
		source:     source,
		priorities: priorities,
		accessLogs: accessLogs,
		opts:       opts.normalized(),
		now:        time.Now,
		newID:      uuid.New,
	}
}

// AggregateRecords computes every requested metric. Any metric failure
// fails the whole call and no access log is written.
func (h *FitnessRecordAggregateHelper) AggregateRecords(
	ctx context.Context,
	req AggregateDataRequest,
) (resp *AggregateDataResponse, err error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "aggregate.records",
		trace.WithAttributes(
			attribute.Int("aggregation.count", len(req.AggregationIDs)),
			attribute.String("caller.package", req.CallerPackage),
			attribute.Bool("window.local", req.Window.Local),
		))
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		aggregateRequests.WithLabelValues(status).Inc()
		aggregateDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
		span.End()
	}()

	if len(req.AggregationIDs) == 0 {
		return &AggregateDataResponse{Buckets: []AggregateBucket{}}, nil
	}

	now := h.now()

	requests, err := h.buildRequests(req)
	if err != nil {
		return nil, err
	}

	results := make([][]coreagg.AggregateResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.opts.WorkerCount)
	for i, r := range requests {
		g.Go(func() error {
			res, err := r.Execute(gctx, h.source, h.priorities)
			if err != nil {
				return err
			}
			results[i] = res
			aggregateMetricsComputed.WithLabelValues(r.AggregationType().Name).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("[Aggregate] Request failed",
			"caller", req.CallerPackage,
			"aggregations", len(requests),
			"error", err)
		return nil, err
	}

	resp, err = assemble(requests, results)
	if err != nil {
		return nil, err
	}

	if h.opts.RecordAccessLogs && req.RecordAccessLog && h.accessLogs != nil {
		entries := h.accessLogEntries(req.CallerPackage, requests, results, now)
		if len(entries) > 0 {
			if err := h.accessLogs.RecordReadAccess(ctx, entries); err != nil {
				return nil, err
			}
		}
	}

	slog.Debug("[Aggregate] Request complete",
		"caller", req.CallerPackage,
		"aggregations", len(requests),
		"buckets", len(resp.Buckets),
		"duration", time.Since(started))
	return resp, nil
}

// buildRequests validates every metric before anything is fetched.
// Repeated ids are computed once.
func (h *FitnessRecordAggregateHelper) buildRequests(req AggregateDataRequest) ([]*AggregateRecordRequest, error) {
	seen := make(map[coreagg.AggregationID]bool, len(req.AggregationIDs))
	requests := make([]*AggregateRecordRequest, 0, len(req.AggregationIDs))
	for _, id := range req.AggregationIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		t, err := h.registry.Get(id)
		if err != nil {
			return nil, err
		}
		r, err := NewAggregateRecordRequest(t, t.RecordType, req.Window, req.GroupBy, req.DataOrigins, h.opts.Request)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, nil
}

func assemble(requests []*AggregateRecordRequest, results [][]coreagg.AggregateResult) (*AggregateDataResponse, error) {
	n := len(results[0])
	buckets := make([]AggregateBucket, n)
	for i := 0; i < n; i++ {
		b := results[0][i].Bucket
		buckets[i] = AggregateBucket{
			Start:   b.Start,
			End:     b.End,
			Results: make(map[coreagg.AggregationID]coreagg.AggregateResult, len(requests)),
		}
	}
	for k, r := range requests {
		if len(results[k]) != n {
			return nil, apperr.Invariantf("aggregation %s returned %d buckets, expected %d",
				r.AggregationType().Name, len(results[k]), n)
		}
		for i, res := range results[k] {
			buckets[i].Results[r.AggregationType().ID] = res
		}
	}
	return &AggregateDataResponse{Buckets: buckets}, nil
}

// accessLogEntries builds one entry per record type read, not per metric,
// listing the origins that contributed to any of its metrics. A record type
// no row contributed to was not read and gets no entry.
func (h *FitnessRecordAggregateHelper) accessLogEntries(
	caller string,
	requests []*AggregateRecordRequest,
	results [][]coreagg.AggregateResult,
	now time.Time,
) []storage.AccessLogEntry {
	origins := make(map[coreagg.RecordType]map[string]bool)
	for k, r := range requests {
		rt := r.AggregationType().RecordType
		if origins[rt] == nil {
			origins[rt] = make(map[string]bool)
		}
		for _, res := range results[k] {
			for _, o := range res.DataOrigins {
				origins[rt][o] = true
			}
		}
	}

	types := make([]coreagg.RecordType, 0, len(origins))
	for rt, set := range origins {
		if len(set) == 0 {
			continue
		}
		types = append(types, rt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	entries := make([]storage.AccessLogEntry, 0, len(types))
	for _, rt := range types {
		list := make([]string, 0, len(origins[rt]))
		for o := range origins[rt] {
			list = append(list, o)
		}
		sort.Strings(list)
		entries = append(entries, storage.AccessLogEntry{
			ID:            h.newID(),
			CallerPackage: caller,
			RecordTypes:   []coreagg.RecordType{rt},
			Operation:     storage.AccessOperationRead,
			AccessTime:    now,
			DataOrigins:   list,
		})
	}
	return entries
}
