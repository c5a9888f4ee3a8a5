package aggregation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation is the reduce applied over a bucket's contributions.
type Operation string

const (
	OpSum   Operation = "SUM"
	OpAvg   Operation = "AVG"
	OpMax   Operation = "MAX"
	OpMin   Operation = "MIN"
	OpCount Operation = "COUNT"
)

// AggregationID is the stable numeric identifier of an AggregationType.
// Ids are append-only: never reuse or renumber an id.
type AggregationID int

// Intensity tags an activity-intensity row.
type Intensity int

const (
	IntensityUnknown Intensity = iota
	IntensityModerate
	IntensityVigorous
)

// Segment is a sub-interval of a session row, e.g. a sleep stage or an
// exercise pause. Kind is the record-specific stage/segment name.
type Segment struct {
	Start time.Time
	End   time.Time
	Kind  string
}

// Sample is a single timestamped value of a series row (heart rate) or the
// sole value of an instant row (weight).
type Sample struct {
	Time  time.Time
	Value decimal.Decimal
}

// RawRecordRow is one stored record as returned by a row source.
// Zone offsets are in seconds east of UTC.
type RawRecordRow struct {
	RowID           int64
	UUID            string
	RecordType      RecordType
	DataOrigin      string
	StartTime       time.Time
	EndTime         time.Time
	StartZoneOffset int
	EndZoneOffset   int
	Payload         map[string]interface{}
	Segments        []Segment
	Samples         []Sample
}

// Bucket is one [Start, End) sub-window produced by a GroupBySpec.
type Bucket struct {
	Start time.Time
	End   time.Time
}

// AggregateResult is the merged value of one bucket.
// HasValue is false when no row contributed; Value is then zero and must not
// be read as a measurement.
type AggregateResult struct {
	Bucket      Bucket          `json:"-"`
	Value       decimal.Decimal `json:"value"`
	HasValue    bool            `json:"has_value"`
	Unit        string          `json:"unit"`
	DataOrigins []string        `json:"data_origins"`
	ZoneOffset  *int            `json:"zone_offset_seconds,omitempty"`
}
