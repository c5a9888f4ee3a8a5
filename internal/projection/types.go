package projection

import (
	"time"

	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
)

// localTimeLayout is the wall-clock format of local_start and local_end.
const localTimeLayout = "2006-01-02T15:04:05"

// AggregateRequest is the body of POST /v1/aggregate.
//
// Exactly one of (Start, End) and (LocalStart, LocalEnd) must be set.
// Aggregations lists ids ("12") or names ("STEPS_COUNT_TOTAL").
type AggregateRequest struct {
	CallerPackage   string          `json:"caller_package" binding:"required"`
	Aggregations    []string        `json:"aggregations"`
	Start           *time.Time      `json:"start,omitempty"`
	End             *time.Time      `json:"end,omitempty"`
	LocalStart      string          `json:"local_start,omitempty"`
	LocalEnd        string          `json:"local_end,omitempty"`
	GroupBy         *GroupByRequest `json:"group_by,omitempty"`
	DataOrigins     []string        `json:"data_origins,omitempty"`
	RecordAccessLog bool            `json:"record_access_log"`
}

// GroupByRequest buckets the window by a calendar period or a duration such
// as "15m" or "1d".
type GroupByRequest struct {
	Period     *coreagg.Period `json:"period,omitempty"`
	Duration   string          `json:"duration,omitempty"`
	Column     string          `json:"column,omitempty"`
	Descending bool            `json:"descending,omitempty"`
}

// BucketValue is one bucket of the aggregate response, keyed by
// aggregation name.
type BucketValue struct {
	Start   time.Time                          `json:"start"`
	End     time.Time                          `json:"end"`
	Results map[string]coreagg.AggregateResult `json:"results"`
}

// AggregateResponse is positional: Buckets follow the grouping order.
type AggregateResponse struct {
	CallerPackage string        `json:"caller_package"`
	LocalTime     bool          `json:"local_time"`
	Buckets       []BucketValue `json:"buckets"`
}

// AggregationTypesResponse lists the registry.
type AggregationTypesResponse struct {
	Types []coreagg.AggregationType `json:"types"`
}
