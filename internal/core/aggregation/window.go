package aggregation

import (
	"fmt"
	"time"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
)

// WindowSpec represents a parsed and validated window size.
type WindowSpec struct {
	Size time.Duration
}

// ParseWindowSize parses a duration string into a WindowSpec.
// Supports Go duration syntax (e.g., "10s", "1m", "1h") plus "Xd" for days.
func ParseWindowSize(s string) (WindowSpec, error) {
	if s == "" {
		return WindowSpec{}, fmt.Errorf("window_size must not be empty")
	}

	// time.ParseDuration has no "d" suffix.
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err != nil {
			return WindowSpec{}, fmt.Errorf("invalid window_size %q: %w", s, err)
		}
		if days <= 0 {
			return WindowSpec{}, fmt.Errorf("window_size must be positive, got %q", s)
		}
		return WindowSpec{Size: time.Duration(days) * 24 * time.Hour}, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return WindowSpec{}, fmt.Errorf("invalid window_size %q: %w", s, err)
	}
	if d <= 0 {
		return WindowSpec{}, fmt.Errorf("window_size must be positive, got %q", s)
	}
	return WindowSpec{Size: d}, nil
}

// TimeWindow is [Start, End) either in absolute instants or in local wall
// time. Local windows hold wall-clock values in UTC and are compared against
// rows shifted by their own zone offsets.
type TimeWindow struct {
	Start time.Time
	End   time.Time
	Local bool
}

// NewInstantWindow builds an absolute-time window.
func NewInstantWindow(start, end time.Time) (TimeWindow, error) {
	if end.Before(start) {
		return TimeWindow{}, apperr.Validationf("time_range", "end %s is before start %s",
			end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return TimeWindow{Start: start.UTC(), End: end.UTC()}, nil
}

// NewLocalWindow builds a local-time window. The location of start and end
// is ignored; only their wall-clock fields are kept.
func NewLocalWindow(start, end time.Time) (TimeWindow, error) {
	s, e := wallClock(start), wallClock(end)
	if e.Before(s) {
		return TimeWindow{}, apperr.Validationf("time_range", "local end %s is before local start %s",
			e.Format("2006-01-02T15:04:05"), s.Format("2006-01-02T15:04:05"))
	}
	return TimeWindow{Start: s, End: e, Local: true}, nil
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Duration is End - Start.
func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// FetchWindow returns the absolute window a row source must query.
// Local windows are widened by pad on both sides because the offset of each
// row is only known after it is read.
func (w TimeWindow) FetchWindow(pad time.Duration) TimeWindow {
	if !w.Local {
		return w
	}
	return TimeWindow{Start: w.Start.Add(-pad), End: w.End.Add(pad)}
}

// Period is a calendar step. Zero fields are ignored.
type Period struct {
	Years  int `json:"years,omitempty"`
	Months int `json:"months,omitempty"`
	Days   int `json:"days,omitempty"`
}

// IsZero reports whether p has no component set.
func (p Period) IsZero() bool { return p.Years == 0 && p.Months == 0 && p.Days == 0 }

func (p Period) valid() bool {
	return !p.IsZero() && p.Years >= 0 && p.Months >= 0 && p.Days >= 0
}

// GroupBySpec buckets a TimeWindow by a calendar period or a fixed duration.
// Exactly one of Period and Duration is set.
type GroupBySpec struct {
	Period     Period
	Duration   time.Duration
	Column     string
	Descending bool
}

// NewGroupByPeriod builds a period grouping.
func NewGroupByPeriod(p Period, column string, descending bool) (GroupBySpec, error) {
	g := GroupBySpec{Period: p, Column: column, Descending: descending}
	return g, g.Validate()
}

// NewGroupByDuration builds a fixed-duration grouping.
func NewGroupByDuration(d time.Duration, column string, descending bool) (GroupBySpec, error) {
	g := GroupBySpec{Duration: d, Column: column, Descending: descending}
	return g, g.Validate()
}

// Validate enforces period XOR duration, both strictly positive.
func (g GroupBySpec) Validate() error {
	hasPeriod := !g.Period.IsZero()
	hasDuration := g.Duration != 0
	switch {
	case hasPeriod && hasDuration:
		return apperr.Validationf("group_by", "period and duration are mutually exclusive")
	case !hasPeriod && !hasDuration:
		return apperr.Validationf("group_by", "one of period or duration is required")
	case hasPeriod && !g.Period.valid():
		return apperr.Validationf("group_by.period", "components must be non-negative, got %+v", g.Period)
	case hasDuration && g.Duration < 0:
		return apperr.Validationf("group_by.duration", "must be positive, got %s", g.Duration)
	}
	return nil
}

// Buckets tiles w into ordered, contiguous, non-overlapping buckets whose
// union is exactly w. The last bucket (in ascending order) is clipped to
// w.End. Descending only reverses the order. An empty window yields one empty
// bucket. limit > 0 rejects groupings that would produce more buckets.
func (g GroupBySpec) Buckets(w TimeWindow, limit int) ([]Bucket, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if !w.End.After(w.Start) {
		return []Bucket{{Start: w.Start, End: w.End}}, nil
	}

	var buckets []Bucket
	cur := w.Start
	for i := 1; cur.Before(w.End); i++ {
		next := g.step(w.Start, i)
		if !next.After(cur) {
			return nil, apperr.Invariantf("group_by step did not advance past %s", cur)
		}
		if next.After(w.End) {
			next = w.End
		}
		buckets = append(buckets, Bucket{Start: cur, End: next})
		if limit > 0 && len(buckets) > limit {
			return nil, apperr.Validationf("group_by", "grouping produces more than %d buckets", limit)
		}
		cur = next
	}

	if g.Descending {
		for l, r := 0, len(buckets)-1; l < r; l, r = l+1, r-1 {
			buckets[l], buckets[r] = buckets[r], buckets[l]
		}
	}
	return buckets, nil
}

// step returns the i-th boundary after origin. Periods are applied as a
// multiple from the origin so month-end clamping does not drift.
func (g GroupBySpec) step(origin time.Time, i int) time.Time {
	if g.Duration > 0 {
		return origin.Add(time.Duration(i) * g.Duration)
	}
	return origin.AddDate(g.Period.Years*i, g.Period.Months*i, g.Period.Days*i)
}

// SingleBucket is the grouping used when no GroupBySpec is given.
func SingleBucket(w TimeWindow) []Bucket {
	return []Bucket{{Start: w.Start, End: w.End}}
}
