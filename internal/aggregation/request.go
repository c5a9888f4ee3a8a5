package aggregation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/shopspring/decimal"
)

const (
	// defaultLocalTimePadding covers the widest zone offsets in use (UTC-12
	// to UTC+14) when a local window is turned into an instant fetch window.
	defaultLocalTimePadding = 14 * time.Hour
	defaultMaxBuckets       = 10000
)

// RequestOptions tunes how a single AggregateRecordRequest executes.
type RequestOptions struct {
	LocalTimePadding time.Duration
	MaxBuckets       int
}

// DefaultRequestOptions returns the options used when none are configured.
func DefaultRequestOptions() RequestOptions {
	return RequestOptions{
		LocalTimePadding: defaultLocalTimePadding,
		MaxBuckets:       defaultMaxBuckets,
	}
}

func (o RequestOptions) normalized() RequestOptions {
	n := o
	if n.LocalTimePadding <= 0 {
		n.LocalTimePadding = defaultLocalTimePadding
	}
	if n.MaxBuckets <= 0 {
		n.MaxBuckets = defaultMaxBuckets
	}
	return n
}

// AggregateRecordRequest computes one aggregation metric over a window,
// optionally grouped into buckets. It is immutable once built and owns no
// shared state, so independent requests can run concurrently.
type AggregateRecordRequest struct {
	aggType      coreagg.AggregationType
	descriptor   coreagg.RecordDescriptor
	window       coreagg.TimeWindow
	groupBy      *coreagg.GroupBySpec
	originFilter []string
	opts         RequestOptions
}

// NewAggregateRecordRequest validates the request. All validation happens
// here, before any row is fetched.
func NewAggregateRecordRequest(
	aggType coreagg.AggregationType,
	recordType coreagg.RecordType,
	window coreagg.TimeWindow,
	groupBy *coreagg.GroupBySpec,
	originFilter []string,
	opts RequestOptions,
) (*AggregateRecordRequest, error) {
	descriptor, err := coreagg.DescribeRecordType(recordType)
	if err != nil {
		return nil, err
	}
	if aggType.RecordType != recordType {
		return nil, apperr.Validationf("record_type",
			"aggregation %s reads %s records, not %s", aggType.Name, aggType.RecordType, recordType)
	}
	if window.End.Before(window.Start) {
		return nil, apperr.Validationf("time_range", "end is before start")
	}

	if groupBy != nil {
		if err := groupBy.Validate(); err != nil {
			return nil, err
		}
		if !descriptor.SupportsColumn(groupBy.Column) {
			return nil, apperr.Validationf("group_by.column",
				"%s records cannot be grouped by %q", descriptor.Name, groupBy.Column)
		}
		g := *groupBy
		groupBy = &g
	}

	filter := make([]string, 0, len(originFilter))
	for _, o := range originFilter {
		if strings.TrimSpace(o) == "" {
			return nil, apperr.Validationf("data_origins", "data origin must not be blank")
		}
		filter = append(filter, o)
	}

	return &AggregateRecordRequest{
		aggType:      aggType,
		descriptor:   descriptor,
		window:       window,
		groupBy:      groupBy,
		originFilter: filter,
		opts:         opts.normalized(),
	}, nil
}

// AggregationType is the metric this request computes.
func (r *AggregateRecordRequest) AggregationType() coreagg.AggregationType { return r.aggType }

// Buckets returns the buckets results are reported for, in result order.
func (r *AggregateRecordRequest) Buckets() ([]coreagg.Bucket, error) {
	if r.groupBy == nil {
		return coreagg.SingleBucket(r.window), nil
	}
	return r.groupBy.Buckets(r.window, r.opts.MaxBuckets)
}

// bucketState accumulates one bucket.
type bucketState struct {
	acc           *coreagg.Accumulator
	origins       map[string]bool
	earliest      time.Time
	earliestShift int
	seen          bool
}

func (s *bucketState) add(values []decimal.Decimal, origin string, start time.Time, offset int) {
	for _, v := range values {
		s.acc.Add(v)
	}
	s.origins[origin] = true
	if !s.seen || start.Before(s.earliest) {
		s.earliest = start
		s.earliestShift = offset
		s.seen = true
	}
}

// Execute fetches the rows and reduces them into one result per bucket.
// Errors from the row source are returned unchanged.
func (r *AggregateRecordRequest) Execute(
	ctx context.Context,
	source storage.RowSource,
	priorities coreagg.PriorityProvider,
) ([]coreagg.AggregateResult, error) {
	buckets, err := r.Buckets()
	if err != nil {
		return nil, err
	}

	origins, ranks, err := r.originPlan(ctx, priorities)
	if err != nil {
		return nil, err
	}

	rows, err := source.FetchRows(ctx, r.aggType.RecordType, r.window.FetchWindow(r.opts.LocalTimePadding), origins)
	if err != nil {
		return nil, err
	}

	data := make([]coreagg.RecordData, len(rows))
	for i, row := range rows {
		d, err := coreagg.NewRecordData(r.aggType.ID)
		if err != nil {
			return nil, err
		}
		if err := d.ExtractFields(row, r.window.Local); err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", r.aggType.Name, err)
		}
		data[i] = d
	}
	if r.descriptor.Kind == coreagg.KindInterval {
		maskOverlaps(rows, data, ranks)
	}

	states := make([]*bucketState, len(buckets))
	for i := range states {
		acc, ok := coreagg.NewAccumulator(r.aggType.Operation)
		if !ok {
			return nil, apperr.Invariantf("aggregation %s has unsupported operation %q", r.aggType.Name, r.aggType.Operation)
		}
		states[i] = &bucketState{acc: acc, origins: make(map[string]bool)}
	}

	byEnd := r.groupBy != nil && r.groupBy.Column == coreagg.ColumnEndTime
	whole := coreagg.Bucket{Start: r.window.Start, End: r.window.End}
	for _, d := range data {
		start, end := d.Span()

		// Grouped by end time, a row lands whole in the one bucket
		// whose (Start, End] holds its end.
		if byEnd {
			i := bucketOfEnd(buckets, end)
			if i < 0 {
				continue
			}
			if values := d.Contributions(whole); values != nil {
				states[i].add(values, d.DataOrigin(), start, d.ZoneOffset())
			}
			continue
		}

		for i, b := range buckets {
			values := d.Contributions(b)
			if values == nil {
				continue
			}
			states[i].add(values, d.DataOrigin(), start, d.ZoneOffset())
		}
	}

	results := make([]coreagg.AggregateResult, len(buckets))
	for i, b := range buckets {
		results[i] = r.result(b, states[i])
	}
	return results, nil
}

// originPlan returns the origins to fetch, nil meaning all of them, and the
// rank of each origin. Lower ranks win overlaps; a nil map ranks every
// origin equally. An explicit filter disables the priority order.
func (r *AggregateRecordRequest) originPlan(
	ctx context.Context,
	priorities coreagg.PriorityProvider,
) ([]string, map[string]int, error) {
	if len(r.originFilter) > 0 {
		return r.originFilter, nil, nil
	}
	if priorities == nil {
		return nil, nil, nil
	}
	order, err := priorities.PriorityFor(ctx, r.descriptor.Category)
	if err != nil {
		return nil, nil, fmt.Errorf("priority for %s: %w", r.descriptor.Category, err)
	}
	if len(order) == 0 {
		return nil, nil, nil
	}
	ranks := make(map[string]int, len(order))
	for i, o := range order {
		if _, dup := ranks[o]; !dup {
			ranks[o] = i
		}
	}
	return order, ranks, nil
}

// maskOverlaps keeps, at every instant, only the best ranked row covering
// it. Ties go to the most recently written row. Time a row loses stays
// with the winner; the loser still counts where nothing else covers it.
func maskOverlaps(rows []coreagg.RawRecordRow, data []coreagg.RecordData, ranks map[string]int) {
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := ranks[rows[order[a]].DataOrigin], ranks[rows[order[b]].DataOrigin]
		if ra != rb {
			return ra < rb
		}
		return rows[order[a]].RowID > rows[order[b]].RowID
	})

	var cov coreagg.Coverage
	for _, i := range order {
		start, end := data[i].Span()
		data[i].Restrict(cov.Claim(coreagg.Interval{Start: start, End: end}))
	}
}

// bucketOfEnd returns the index of the bucket with Start < end <= End, or -1.
func bucketOfEnd(buckets []coreagg.Bucket, end time.Time) int {
	for i, b := range buckets {
		if end.After(b.Start) && !end.After(b.End) {
			return i
		}
	}
	return -1
}

func (r *AggregateRecordRequest) result(b coreagg.Bucket, s *bucketState) coreagg.AggregateResult {
	res := coreagg.AggregateResult{
		Bucket:      b,
		Unit:        r.aggType.Unit,
		DataOrigins: []string{},
	}
	value, ok := s.acc.Result()
	if !ok {
		return res
	}
	res.Value = value
	res.HasValue = true
	for o := range s.origins {
		res.DataOrigins = append(res.DataOrigins, o)
	}
	sort.Strings(res.DataOrigins)
	offset := s.earliestShift
	res.ZoneOffset = &offset
	return res
}
