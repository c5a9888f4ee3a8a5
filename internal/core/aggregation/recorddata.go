package aggregation

import (
	"fmt"
	"time"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/shopspring/decimal"
)

const millisPerMinute = int64(time.Minute / time.Millisecond)

// Payload fields read by contribution formulas.
const (
	FieldIntensity = "intensity"
	FieldCount     = "count"
	FieldEnergy    = "energy_kcal"
	FieldWeight    = "weight_kg"
)

// Excluded segment kinds.
const (
	SleepStageAwake      = "AWAKE"
	SleepStageAwakeInBed = "AWAKE_IN_BED"
	SleepStageOutOfBed   = "OUT_OF_BED"
	ExerciseSegmentPause = "PAUSE"
	ExerciseSegmentRest  = "REST"
)

// RecordData computes one row's contributions to a bucket.
// ExtractFields must be called before any other method.
type RecordData interface {
	// ExtractFields loads the row. With useLocalTime, every timestamp of the
	// row is shifted by the row's own zone offset.
	ExtractFields(row RawRecordRow, useLocalTime bool) error

	// Span is the row's [start, end) after ExtractFields.
	Span() (time.Time, time.Time)

	// Restrict limits an interval row to the visible parts of its span,
	// the time no higher ranked row already covers. Sample rows ignore it.
	Restrict(visible []Interval)

	// Contributions returns the values the row adds to b. Nil means the row
	// does not contribute to b at all.
	Contributions(b Bucket) []decimal.Decimal

	DataOrigin() string
	ZoneOffset() int
}

// rowFields is the part of a row every variant needs.
type rowFields struct {
	start, end time.Time
	origin     string
	offset     int
	visible    []Interval
}

func (f *rowFields) load(row RawRecordRow, useLocalTime bool) {
	f.start, f.end = row.StartTime.UTC(), row.EndTime.UTC()
	if useLocalTime {
		f.start = shift(row.StartTime, row.StartZoneOffset)
		f.end = shift(row.EndTime, row.EndZoneOffset)
	}
	f.origin = row.DataOrigin
	f.offset = row.StartZoneOffset
	f.visible = []Interval{{Start: f.start, End: f.end}}
}

func (f *rowFields) Span() (time.Time, time.Time) { return f.start, f.end }
func (f *rowFields) DataOrigin() string           { return f.origin }
func (f *rowFields) ZoneOffset() int              { return f.offset }
func (f *rowFields) Restrict(visible []Interval)  { f.visible = visible }

// touches reports whether any visible part of the row lies in b.
func (f *rowFields) touches(b Bucket) bool {
	for _, iv := range f.visible {
		if Intersects(iv.Start, iv.End, b) {
			return true
		}
	}
	return false
}

// visibleOverlap is the visible time of the row inside [lo, hi).
func (f *rowFields) visibleOverlap(lo, hi time.Time) int64 {
	var total int64
	for _, iv := range f.visible {
		total += OverlapMillis(iv.Start, iv.End, lo, hi)
	}
	return total
}

func shift(t time.Time, offsetSeconds int) time.Time {
	return t.UTC().Add(time.Duration(offsetSeconds) * time.Second)
}

// durationData: overlap minus excluded segments, times 1.
type durationData struct {
	rowFields
	excluded map[string]bool
	// segments are the excluded stages clipped to the row and merged.
	segments []Interval
}

func (d *durationData) ExtractFields(row RawRecordRow, useLocalTime bool) error {
	d.load(row, useLocalTime)
	var excluded []Interval
	for _, seg := range row.Segments {
		if !d.excluded[seg.Kind] {
			continue
		}
		s, e := seg.Start.UTC(), seg.End.UTC()
		if useLocalTime {
			s, e = shift(seg.Start, row.StartZoneOffset), shift(seg.End, row.StartZoneOffset)
		}
		// Segments never extend the row.
		s, e = clip(s, e, d.start, d.end)
		excluded = append(excluded, Interval{Start: s, End: e})
	}
	d.segments = MergeIntervals(excluded)
	return nil
}

// Contribution is the duration formula in milliseconds: the visible time in
// the bucket minus the excluded stages inside that visible time.
func (d *durationData) Contribution(bucketStart, bucketEnd time.Time) int64 {
	var total int64
	for _, iv := range d.visible {
		lo, hi := clip(iv.Start, iv.End, bucketStart, bucketEnd)
		if !hi.After(lo) {
			continue
		}
		total += hi.Sub(lo).Milliseconds()
		for _, seg := range d.segments {
			total -= OverlapMillis(seg.Start, seg.End, lo, hi)
		}
	}
	return total
}

func (d *durationData) Contributions(b Bucket) []decimal.Decimal {
	if !d.touches(b) {
		return nil
	}
	return []decimal.Decimal{decimal.NewFromInt(d.Contribution(b.Start, b.End))}
}

// intensityData: overlap times a multiplier chosen by the row's intensity,
// optionally in truncated minutes.
type intensityData struct {
	rowFields
	intensity  Intensity
	multiplier func(Intensity) int64
	minutes    bool
}

func (d *intensityData) ExtractFields(row RawRecordRow, useLocalTime bool) error {
	d.load(row, useLocalTime)
	v, ok := PayloadInt(row.Payload, FieldIntensity)
	if !ok {
		return fmt.Errorf("activity intensity row %s: missing %s", row.UUID, FieldIntensity)
	}
	switch in := Intensity(v); in {
	case IntensityModerate, IntensityVigorous:
		d.intensity = in
	default:
		return fmt.Errorf("activity intensity row %s: unknown intensity %d", row.UUID, v)
	}
	return nil
}

// Contribution is overlapMillis * multiplier, divided by one minute for the
// minutes variant. Integer division: partial minutes are dropped.
func (d *intensityData) Contribution(bucketStart, bucketEnd time.Time) int64 {
	v := d.visibleOverlap(bucketStart, bucketEnd) * d.multiplier(d.intensity)
	if d.minutes {
		return v / millisPerMinute
	}
	return v
}

func (d *intensityData) Contributions(b Bucket) []decimal.Decimal {
	if !d.touches(b) {
		return nil
	}
	return []decimal.Decimal{decimal.NewFromInt(d.Contribution(b.Start, b.End))}
}

func always(Intensity) int64 { return 1 }

func only(want Intensity) func(Intensity) int64 {
	return func(got Intensity) int64 {
		if got == want {
			return 1
		}
		return 0
	}
}

func weighted(in Intensity) int64 {
	if in == IntensityVigorous {
		return 2
	}
	return 1
}

// proratedData: an interval value split across buckets by overlap share.
type proratedData struct {
	rowFields
	field string
	value decimal.Decimal
}

func (d *proratedData) ExtractFields(row RawRecordRow, useLocalTime bool) error {
	d.load(row, useLocalTime)
	v, ok := PayloadDecimal(row.Payload, d.field)
	if !ok {
		return fmt.Errorf("%s row %s: missing %s", row.RecordType, row.UUID, d.field)
	}
	d.value = v
	return nil
}

func (d *proratedData) Contributions(b Bucket) []decimal.Decimal {
	if !d.touches(b) {
		return nil
	}
	total := d.end.Sub(d.start).Milliseconds()
	if total <= 0 {
		return []decimal.Decimal{d.value}
	}
	overlap := d.visibleOverlap(b.Start, b.End)
	if overlap == total {
		return []decimal.Decimal{d.value}
	}
	share := d.value.Mul(decimal.NewFromInt(overlap)).Div(decimal.NewFromInt(total))
	return []decimal.Decimal{share}
}

// sampleData: point values. Series rows carry Samples; instant rows carry
// one value in the payload at their start time.
type sampleData struct {
	rowFields
	field   string
	samples []Sample
}

func (d *sampleData) ExtractFields(row RawRecordRow, useLocalTime bool) error {
	d.load(row, useLocalTime)
	d.samples = d.samples[:0]
	if len(row.Samples) > 0 {
		for _, s := range row.Samples {
			t := s.Time.UTC()
			if useLocalTime {
				t = shift(s.Time, row.StartZoneOffset)
			}
			d.samples = append(d.samples, Sample{Time: t, Value: s.Value})
		}
		return nil
	}
	v, ok := PayloadDecimal(row.Payload, d.field)
	if !ok {
		return fmt.Errorf("%s row %s: no samples and no %s", row.RecordType, row.UUID, d.field)
	}
	d.samples = append(d.samples, Sample{Time: d.start, Value: v})
	return nil
}

func (d *sampleData) Contributions(b Bucket) []decimal.Decimal {
	var out []decimal.Decimal
	for _, s := range d.samples {
		if !s.Time.Before(b.Start) && s.Time.Before(b.End) {
			out = append(out, s.Value)
		}
	}
	return out
}

func clip(s, e, lo, hi time.Time) (time.Time, time.Time) {
	if s.Before(lo) {
		s = lo
	}
	if e.After(hi) {
		e = hi
	}
	return s, e
}

func excludedKinds(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

type recordDataFactory func() RecordData

// recordDataHandlers binds every aggregation id to its contribution variant.
// init refuses to start if the catalog and this table disagree.
var recordDataHandlers = map[AggregationID]recordDataFactory{
	StepsCountTotal:     func() RecordData { return &proratedData{field: FieldCount} },
	ActiveCaloriesTotal: func() RecordData { return &proratedData{field: FieldEnergy} },

	HeartRateBpmMin:        func() RecordData { return &sampleData{} },
	HeartRateBpmMax:        func() RecordData { return &sampleData{} },
	HeartRateBpmAvg:        func() RecordData { return &sampleData{} },
	HeartMeasurementsCount: func() RecordData { return &sampleData{} },
	WeightMin:              func() RecordData { return &sampleData{field: FieldWeight} },
	WeightMax:              func() RecordData { return &sampleData{field: FieldWeight} },
	WeightAvg:              func() RecordData { return &sampleData{field: FieldWeight} },

	ExerciseDurationTotal: func() RecordData {
		return &durationData{excluded: excludedKinds(ExerciseSegmentPause, ExerciseSegmentRest)}
	},
	SleepDurationTotal: func() RecordData {
		return &durationData{excluded: excludedKinds(SleepStageAwake, SleepStageAwakeInBed, SleepStageOutOfBed)}
	},

	ActivityIntensityDurationTotal: func() RecordData { return &intensityData{multiplier: always} },
	ActivityIntensityModerateTotal: func() RecordData { return &intensityData{multiplier: only(IntensityModerate)} },
	ActivityIntensityVigorousTotal: func() RecordData { return &intensityData{multiplier: only(IntensityVigorous)} },
	ActivityIntensityMinutesTotal:  func() RecordData { return &intensityData{multiplier: weighted, minutes: true} },
}

func init() {
	if err := checkHandlers(DefaultRegistry(), recordDataHandlers); err != nil {
		panic(err)
	}
}

func checkHandlers(r *Registry, handlers map[AggregationID]recordDataFactory) error {
	for _, t := range r.All() {
		if _, ok := handlers[t.ID]; !ok {
			return apperr.Invariantf("aggregation %s (%d) has no contribution handler", t.Name, t.ID)
		}
	}
	for id := range handlers {
		if _, err := r.Get(id); err != nil {
			return apperr.Invariantf("contribution handler for unregistered aggregation %d", id)
		}
	}
	return nil
}

// NewRecordData returns a fresh contribution variant for id.
func NewRecordData(id AggregationID) (RecordData, error) {
	factory, ok := recordDataHandlers[id]
	if !ok {
		return nil, apperr.Invariantf("no contribution handler for aggregation %d", id)
	}
	return factory(), nil
}
