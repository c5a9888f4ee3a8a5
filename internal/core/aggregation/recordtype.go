package aggregation

import (
	"sort"
	"strconv"
	"strings"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
)

// RecordType identifies a stored record family.
type RecordType int

const (
	RecordTypeSteps RecordType = iota + 1
	RecordTypeActiveCaloriesBurned
	RecordTypeHeartRate
	RecordTypeWeight
	RecordTypeExerciseSession
	RecordTypeSleepSession
	RecordTypeActivityIntensity
)

// Category groups record types that share one data-origin priority order.
type Category string

const (
	CategoryActivity         Category = "ACTIVITY"
	CategorySleep            Category = "SLEEP"
	CategoryVitals           Category = "VITALS"
	CategoryBodyMeasurements Category = "BODY_MEASUREMENTS"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryActivity, CategorySleep, CategoryVitals, CategoryBodyMeasurements:
		return true
	}
	return false
}

// RecordKind says how a row occupies time.
type RecordKind int

const (
	// KindInterval rows cover [start, end).
	KindInterval RecordKind = iota
	// KindSample rows carry point samples; a sample at t lies in [t, t].
	KindSample
)

// Group-by columns. Only interval records can be grouped by end time.
const (
	ColumnStartTime = "start_time"
	ColumnEndTime   = "end_time"
)

// RecordDescriptor is the static description of a record type.
type RecordDescriptor struct {
	Type     RecordType
	Name     string
	Category Category
	Kind     RecordKind
	// GroupByColumns are the columns a GroupBySpec may name for this type.
	GroupByColumns []string
}

// SupportsColumn reports whether column is a valid group-by column.
// The empty column always means the default (start time).
func (d RecordDescriptor) SupportsColumn(column string) bool {
	if column == "" {
		return true
	}
	for _, c := range d.GroupByColumns {
		if c == column {
			return true
		}
	}
	return false
}

var recordDescriptors = map[RecordType]RecordDescriptor{
	RecordTypeSteps: {
		Type: RecordTypeSteps, Name: "Steps", Category: CategoryActivity, Kind: KindInterval,
		GroupByColumns: []string{ColumnStartTime, ColumnEndTime},
	},
	RecordTypeActiveCaloriesBurned: {
		Type: RecordTypeActiveCaloriesBurned, Name: "ActiveCaloriesBurned", Category: CategoryActivity, Kind: KindInterval,
		GroupByColumns: []string{ColumnStartTime, ColumnEndTime},
	},
	RecordTypeHeartRate: {
		Type: RecordTypeHeartRate, Name: "HeartRate", Category: CategoryVitals, Kind: KindSample,
		GroupByColumns: []string{ColumnStartTime},
	},
	RecordTypeWeight: {
		Type: RecordTypeWeight, Name: "Weight", Category: CategoryBodyMeasurements, Kind: KindSample,
		GroupByColumns: []string{ColumnStartTime},
	},
	RecordTypeExerciseSession: {
		Type: RecordTypeExerciseSession, Name: "ExerciseSession", Category: CategoryActivity, Kind: KindInterval,
		GroupByColumns: []string{ColumnStartTime, ColumnEndTime},
	},
	RecordTypeSleepSession: {
		Type: RecordTypeSleepSession, Name: "SleepSession", Category: CategorySleep, Kind: KindInterval,
		GroupByColumns: []string{ColumnStartTime, ColumnEndTime},
	},
	RecordTypeActivityIntensity: {
		Type: RecordTypeActivityIntensity, Name: "ActivityIntensity", Category: CategoryActivity, Kind: KindInterval,
		GroupByColumns: []string{ColumnStartTime, ColumnEndTime},
	},
}

// DescribeRecordType returns the descriptor of rt or ErrNotFound.
func DescribeRecordType(rt RecordType) (RecordDescriptor, error) {
	d, ok := recordDescriptors[rt]
	if !ok {
		return RecordDescriptor{}, apperr.NotFoundf("record type %d", rt)
	}
	return d, nil
}

// ParseRecordType accepts a record type name ("Steps", case-insensitive) or
// its numeric value.
func ParseRecordType(s string) (RecordType, error) {
	if n, err := strconv.Atoi(s); err == nil {
		rt := RecordType(n)
		if _, ok := recordDescriptors[rt]; !ok {
			return 0, apperr.Validationf("record_type", "unknown record type %d", n)
		}
		return rt, nil
	}
	for rt, d := range recordDescriptors {
		if strings.EqualFold(d.Name, s) {
			return rt, nil
		}
	}
	return 0, apperr.Validationf("record_type", "unknown record type %q", s)
}

// RecordTypes returns all known record types in id order.
func RecordTypes() []RecordType {
	out := make([]RecordType, 0, len(recordDescriptors))
	for rt := range recordDescriptors {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (rt RecordType) String() string {
	if d, ok := recordDescriptors[rt]; ok {
		return d.Name
	}
	return "Unknown"
}
