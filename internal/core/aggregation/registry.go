package aggregation

import (
	"fmt"
	"sort"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
)

// Stable aggregation ids. Append only.
const (
	StepsCountTotal                AggregationID = 1
	ActiveCaloriesTotal            AggregationID = 2
	HeartRateBpmMin                AggregationID = 3
	HeartRateBpmMax                AggregationID = 4
	HeartRateBpmAvg                AggregationID = 5
	HeartMeasurementsCount         AggregationID = 6
	WeightMin                      AggregationID = 7
	WeightMax                      AggregationID = 8
	WeightAvg                      AggregationID = 9
	ExerciseDurationTotal          AggregationID = 10
	SleepDurationTotal             AggregationID = 11
	ActivityIntensityDurationTotal AggregationID = 12
	ActivityIntensityModerateTotal AggregationID = 13
	ActivityIntensityVigorousTotal AggregationID = 14
	ActivityIntensityMinutesTotal  AggregationID = 15
)

// Result units.
const (
	UnitCount        = "count"
	UnitKilocalories = "kcal"
	UnitBPM          = "bpm"
	UnitKilograms    = "kg"
	UnitMillis       = "ms"
	UnitMinutes      = "min"
)

// AggregationType describes one aggregate metric.
type AggregationType struct {
	ID         AggregationID `json:"id"`
	Name       string        `json:"name"`
	RecordType RecordType    `json:"record_type"`
	Operation  Operation     `json:"operation"`
	Unit       string        `json:"unit"`
}

var catalog = []AggregationType{
	{ID: StepsCountTotal, Name: "STEPS_COUNT_TOTAL", RecordType: RecordTypeSteps, Operation: OpSum, Unit: UnitCount},
	{ID: ActiveCaloriesTotal, Name: "ACTIVE_CALORIES_TOTAL", RecordType: RecordTypeActiveCaloriesBurned, Operation: OpSum, Unit: UnitKilocalories},
	{ID: HeartRateBpmMin, Name: "HEART_RATE_BPM_MIN", RecordType: RecordTypeHeartRate, Operation: OpMin, Unit: UnitBPM},
	{ID: HeartRateBpmMax, Name: "HEART_RATE_BPM_MAX", RecordType: RecordTypeHeartRate, Operation: OpMax, Unit: UnitBPM},
	{ID: HeartRateBpmAvg, Name: "HEART_RATE_BPM_AVG", RecordType: RecordTypeHeartRate, Operation: OpAvg, Unit: UnitBPM},
	{ID: HeartMeasurementsCount, Name: "HEART_MEASUREMENTS_COUNT", RecordType: RecordTypeHeartRate, Operation: OpCount, Unit: UnitCount},
	{ID: WeightMin, Name: "WEIGHT_MIN", RecordType: RecordTypeWeight, Operation: OpMin, Unit: UnitKilograms},
	{ID: WeightMax, Name: "WEIGHT_MAX", RecordType: RecordTypeWeight, Operation: OpMax, Unit: UnitKilograms},
	{ID: WeightAvg, Name: "WEIGHT_AVG", RecordType: RecordTypeWeight, Operation: OpAvg, Unit: UnitKilograms},
	{ID: ExerciseDurationTotal, Name: "EXERCISE_DURATION_TOTAL", RecordType: RecordTypeExerciseSession, Operation: OpSum, Unit: UnitMillis},
	{ID: SleepDurationTotal, Name: "SLEEP_DURATION_TOTAL", RecordType: RecordTypeSleepSession, Operation: OpSum, Unit: UnitMillis},
	{ID: ActivityIntensityDurationTotal, Name: "ACTIVITY_INTENSITY_DURATION_TOTAL", RecordType: RecordTypeActivityIntensity, Operation: OpSum, Unit: UnitMillis},
	{ID: ActivityIntensityModerateTotal, Name: "ACTIVITY_INTENSITY_MODERATE_DURATION_TOTAL", RecordType: RecordTypeActivityIntensity, Operation: OpSum, Unit: UnitMillis},
	{ID: ActivityIntensityVigorousTotal, Name: "ACTIVITY_INTENSITY_VIGOROUS_DURATION_TOTAL", RecordType: RecordTypeActivityIntensity, Operation: OpSum, Unit: UnitMillis},
	{ID: ActivityIntensityMinutesTotal, Name: "ACTIVITY_INTENSITY_MINUTES_TOTAL", RecordType: RecordTypeActivityIntensity, Operation: OpSum, Unit: UnitMinutes},
}

// Registry is the immutable catalog of aggregation types.
type Registry struct {
	byID   map[AggregationID]AggregationType
	byName map[string]AggregationType
}

// NewRegistry validates types and builds a registry. Every type must name a
// known record type and operation, and ids and names must be unique.
func NewRegistry(types []AggregationType) (*Registry, error) {
	r := &Registry{
		byID:   make(map[AggregationID]AggregationType, len(types)),
		byName: make(map[string]AggregationType, len(types)),
	}
	for _, t := range types {
		if _, err := DescribeRecordType(t.RecordType); err != nil {
			return nil, fmt.Errorf("aggregation %s: %w", t.Name, err)
		}
		if !ValidOperation(t.Operation) {
			return nil, fmt.Errorf("aggregation %s: unsupported operation %q", t.Name, t.Operation)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("aggregation %s: duplicate id %d", t.Name, t.ID)
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("aggregation %d: duplicate name %q", t.ID, t.Name)
		}
		r.byID[t.ID] = t
		r.byName[t.Name] = t
	}
	return r, nil
}

var defaultRegistry = mustRegistry(catalog)

func mustRegistry(types []AggregationType) *Registry {
	r, err := NewRegistry(types)
	if err != nil {
		panic(apperr.Invariantf("aggregation catalog: %v", err))
	}
	return r
}

// DefaultRegistry returns the built-in catalog.
func DefaultRegistry() *Registry { return defaultRegistry }

// Get returns the type registered under id, or ErrNotFound.
func (r *Registry) Get(id AggregationID) (AggregationType, error) {
	t, ok := r.byID[id]
	if !ok {
		return AggregationType{}, apperr.NotFoundf("aggregation id %d", id)
	}
	return t, nil
}

// ByName returns the type registered under name, or ErrNotFound.
func (r *Registry) ByName(name string) (AggregationType, error) {
	t, ok := r.byName[name]
	if !ok {
		return AggregationType{}, apperr.NotFoundf("aggregation %q", name)
	}
	return t, nil
}

// IDFor is the inverse of Get.
func (r *Registry) IDFor(t AggregationType) (AggregationID, error) {
	registered, ok := r.byID[t.ID]
	if !ok || registered != t {
		return 0, apperr.NotFoundf("aggregation type %q", t.Name)
	}
	return registered.ID, nil
}

// All returns every registered type in id order.
func (r *Registry) All() []AggregationType {
	out := make([]AggregationType, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
