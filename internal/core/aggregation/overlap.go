package aggregation

import "time"

// OverlapMillis returns the overlap of [aStart, aEnd) and [bStart, bEnd) in
// milliseconds, never negative.
func OverlapMillis(aStart, aEnd, bStart, bEnd time.Time) int64 {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start).Milliseconds()
}

// Intersects reports whether a row spanning [start, end) touches b.
// Zero-length rows are points and belong to the bucket containing them.
func Intersects(start, end time.Time, b Bucket) bool {
	if !end.After(start) {
		return !start.Before(b.Start) && start.Before(b.End)
	}
	return start.Before(b.End) && end.After(b.Start)
}
