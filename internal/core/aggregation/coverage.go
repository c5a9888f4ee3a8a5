package aggregation

import (
	"sort"
	"time"
)

// Interval is a half-open [Start, End) span.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) isPoint() bool { return !iv.End.After(iv.Start) }

// MergeIntervals returns the union of ivs as sorted, disjoint intervals.
// Empty intervals are dropped.
func MergeIntervals(ivs []Interval) []Interval {
	sorted := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if !iv.isPoint() {
			sorted = append(sorted, iv)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var out []Interval
	for _, iv := range sorted {
		if n := len(out); n > 0 && !iv.Start.After(out[n-1].End) {
			if iv.End.After(out[n-1].End) {
				out[n-1].End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Coverage is the time already claimed by earlier, higher ranked rows.
type Coverage struct {
	covered []Interval // sorted, disjoint
}

// Claim returns the parts of iv nobody has claimed yet and marks iv as
// claimed. A zero-length iv is a point: it comes back whole when no claimed
// interval contains it and never claims anything itself.
func (c *Coverage) Claim(iv Interval) []Interval {
	if iv.isPoint() {
		for _, cv := range c.covered {
			if !iv.Start.Before(cv.Start) && iv.Start.Before(cv.End) {
				return nil
			}
		}
		return []Interval{iv}
	}

	var free []Interval
	cur := iv.Start
	for _, cv := range c.covered {
		if !cv.End.After(cur) {
			continue
		}
		if !cv.Start.Before(iv.End) {
			break
		}
		if cv.Start.After(cur) {
			free = append(free, Interval{Start: cur, End: cv.Start})
		}
		if cv.End.After(cur) {
			cur = cv.End
		}
		if !cur.Before(iv.End) {
			break
		}
	}
	if cur.Before(iv.End) {
		free = append(free, Interval{Start: cur, End: iv.End})
	}

	c.covered = MergeIntervals(append(c.covered, iv))
	return free
}
