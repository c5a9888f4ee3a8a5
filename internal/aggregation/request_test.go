package aggregation

import (
	"context"
	"errors"
	"testing"
	"time"

	coreagg "github.com/aevon-lab/project-vitals/internal/core/aggregation"
	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/aevon-lab/project-vitals/internal/core/storage"
	"github.com/aevon-lab/project-vitals/internal/core/storage/memory"
	storagemocks "github.com/aevon-lab/project-vitals/internal/mocks/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var d0 = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func mustType(t *testing.T, id coreagg.AggregationID) coreagg.AggregationType {
	t.Helper()
	at, err := coreagg.DefaultRegistry().Get(id)
	require.NoError(t, err)
	return at
}

func mustInstant(t *testing.T, start, end time.Time) coreagg.TimeWindow {
	t.Helper()
	w, err := coreagg.NewInstantWindow(start, end)
	require.NoError(t, err)
	return w
}

func hourly(t *testing.T, column string, desc bool) *coreagg.GroupBySpec {
	t.Helper()
	g, err := coreagg.NewGroupByDuration(time.Hour, column, desc)
	require.NoError(t, err)
	return &g
}

func intensityRow(origin string, start time.Time, d time.Duration, in coreagg.Intensity) coreagg.RawRecordRow {
	return coreagg.RawRecordRow{
		RecordType: coreagg.RecordTypeActivityIntensity,
		DataOrigin: origin,
		StartTime:  start,
		EndTime:    start.Add(d),
		Payload:    map[string]interface{}{coreagg.FieldIntensity: int(in)},
	}
}

func execute(t *testing.T, src storage.RowSource, id coreagg.AggregationID, w coreagg.TimeWindow, g *coreagg.GroupBySpec) []coreagg.AggregateResult {
	t.Helper()
	at := mustType(t, id)
	req, err := NewAggregateRecordRequest(at, at.RecordType, w, g, nil, DefaultRequestOptions())
	require.NoError(t, err)
	res, err := req.Execute(context.Background(), src, nil)
	require.NoError(t, err)
	return res
}

func TestNewAggregateRecordRequest_Validation(t *testing.T) {
	steps := mustType(t, coreagg.StepsCountTotal)
	heart := mustType(t, coreagg.HeartRateBpmAvg)
	w := mustInstant(t, d0, d0.Add(time.Hour))

	tests := []struct {
		name       string
		aggType    coreagg.AggregationType
		recordType coreagg.RecordType
		window     coreagg.TimeWindow
		groupBy    *coreagg.GroupBySpec
		origins    []string
		wantErr    error
	}{
		{name: "record type mismatch", aggType: steps, recordType: coreagg.RecordTypeHeartRate, window: w, wantErr: apperr.ErrValidation},
		{name: "unknown record type", aggType: steps, recordType: coreagg.RecordType(99), window: w, wantErr: apperr.ErrNotFound},
		{name: "inverted window", aggType: steps, recordType: coreagg.RecordTypeSteps, window: coreagg.TimeWindow{Start: d0, End: d0.Add(-time.Second)}, wantErr: apperr.ErrValidation},
		{name: "unsupported column", aggType: heart, recordType: coreagg.RecordTypeHeartRate, window: w, groupBy: hourly(t, coreagg.ColumnEndTime, false), wantErr: apperr.ErrValidation},
		{name: "invalid grouping", aggType: steps, recordType: coreagg.RecordTypeSteps, window: w, groupBy: &coreagg.GroupBySpec{}, wantErr: apperr.ErrValidation},
		{name: "blank origin", aggType: steps, recordType: coreagg.RecordTypeSteps, window: w, origins: []string{" "}, wantErr: apperr.ErrValidation},
		{name: "valid end time grouping", aggType: steps, recordType: coreagg.RecordTypeSteps, window: w, groupBy: hourly(t, coreagg.ColumnEndTime, false)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAggregateRecordRequest(tc.aggType, tc.recordType, tc.window, tc.groupBy, tc.origins, DefaultRequestOptions())
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestExecute_WeightedMinutesAcrossBuckets(t *testing.T) {
	src := memory.NewRowSource()
	src.Add(
		intensityRow("watch", d0, 10*time.Minute, coreagg.IntensityModerate),
		intensityRow("watch", d0.Add(time.Hour), 10*time.Minute, coreagg.IntensityVigorous),
	)

	res := execute(t, src, coreagg.ActivityIntensityMinutesTotal, mustInstant(t, d0, d0.Add(3*time.Hour)), hourly(t, "", false))
	require.Len(t, res, 3)

	require.True(t, res[0].HasValue)
	require.True(t, res[0].Value.Equal(decimal.NewFromInt(10)))
	require.True(t, res[1].HasValue)
	require.True(t, res[1].Value.Equal(decimal.NewFromInt(20)))
	require.False(t, res[2].HasValue)
	require.Empty(t, res[2].DataOrigins)
	require.Nil(t, res[2].ZoneOffset)

	require.Equal(t, []string{"watch"}, res[0].DataOrigins)
	require.Equal(t, coreagg.UnitMinutes, res[0].Unit)
	require.Equal(t, d0, res[0].Bucket.Start)
}

func TestExecute_DescendingReversesBucketsOnly(t *testing.T) {
	src := memory.NewRowSource()
	src.Add(intensityRow("watch", d0, 10*time.Minute, coreagg.IntensityModerate))

	w := mustInstant(t, d0, d0.Add(3*time.Hour))
	asc := execute(t, src, coreagg.ActivityIntensityDurationTotal, w, hourly(t, "", false))
	desc := execute(t, src, coreagg.ActivityIntensityDurationTotal, w, hourly(t, "", true))

	require.Len(t, desc, len(asc))
	for i := range asc {
		require.Equal(t, asc[i].Bucket, desc[len(desc)-1-i].Bucket)
		require.True(t, asc[i].Value.Equal(desc[len(desc)-1-i].Value))
	}
	require.True(t, desc[2].Value.Equal(decimal.NewFromInt(10*60*1000)))
}

func TestExecute_SingleBucketWithoutGrouping(t *testing.T) {
	src := memory.NewRowSource()
	src.Add(
		intensityRow("watch", d0, 10*time.Minute, coreagg.IntensityModerate),
		intensityRow("phone", d0.Add(2*time.Hour), 5*time.Minute, coreagg.IntensityVigorous),
	)

	res := execute(t, src, coreagg.ActivityIntensityVigorousTotal, mustInstant(t, d0, d0.Add(24*time.Hour)), nil)
	require.Len(t, res, 1)
	require.True(t, res[0].Value.Equal(decimal.NewFromInt(5*60*1000)))
	require.Equal(t, []string{"phone", "watch"}, res[0].DataOrigins, "zero contributions still attribute their origin")
}

func TestExecute_EmptyFetchIsNotAnError(t *testing.T) {
	res := execute(t, memory.NewRowSource(), coreagg.HeartRateBpmMax, mustInstant(t, d0, d0.Add(2*time.Hour)), hourly(t, "", false))
	require.Len(t, res, 2)
	for _, r := range res {
		require.False(t, r.HasValue)
		require.True(t, r.Value.IsZero())
	}
}

func TestExecute_HeartRateStatistics(t *testing.T) {
	sample := func(minute int, bpm int64) coreagg.Sample {
		return coreagg.Sample{Time: d0.Add(time.Duration(minute) * time.Minute), Value: decimal.NewFromInt(bpm)}
	}
	src := memory.NewRowSource()
	src.Add(coreagg.RawRecordRow{
		RecordType: coreagg.RecordTypeHeartRate,
		DataOrigin: "watch",
		StartTime:  d0,
		EndTime:    d0.Add(90 * time.Minute),
		Samples:    []coreagg.Sample{sample(0, 60), sample(30, 90), sample(59, 75), sample(60, 120)},
	})

	w := mustInstant(t, d0, d0.Add(2*time.Hour))
	g := hourly(t, "", false)

	avg := execute(t, src, coreagg.HeartRateBpmAvg, w, g)
	require.True(t, avg[0].Value.Equal(decimal.NewFromInt(75)))
	require.True(t, avg[1].Value.Equal(decimal.NewFromInt(120)))

	count := execute(t, src, coreagg.HeartMeasurementsCount, w, g)
	require.True(t, count[0].Value.Equal(decimal.NewFromInt(3)))
	require.True(t, count[1].Value.Equal(decimal.NewFromInt(1)))

	lo := execute(t, src, coreagg.HeartRateBpmMin, w, g)
	require.True(t, lo[0].Value.Equal(decimal.NewFromInt(60)))
}

func TestExecute_PriorityOrderSelectsTopOrigin(t *testing.T) {
	src := memory.NewRowSource()
	src.Add(
		intensityRow("phone", d0, 30*time.Minute, coreagg.IntensityModerate),
		intensityRow("watch", d0, 20*time.Minute, coreagg.IntensityModerate),
	)
	priorities := coreagg.NewStaticPriorityRepository(map[coreagg.Category][]string{
		coreagg.CategoryActivity: {"watch", "phone"},
	})

	at := mustType(t, coreagg.ActivityIntensityDurationTotal)
	req, err := NewAggregateRecordRequest(at, at.RecordType, mustInstant(t, d0, d0.Add(time.Hour)), nil, nil, DefaultRequestOptions())
	require.NoError(t, err)

	res, err := req.Execute(context.Background(), src, priorities)
	require.NoError(t, err)
	// watch owns the first 20 minutes; phone keeps the 10 it alone covers.
	require.Equal(t, []string{"phone", "watch"}, res[0].DataOrigins)
	require.True(t, res[0].Value.Equal(decimal.NewFromInt(30*60*1000)))

	// An explicit filter bypasses the priority order.
	req, err = NewAggregateRecordRequest(at, at.RecordType, mustInstant(t, d0, d0.Add(time.Hour)), nil, []string{"phone"}, DefaultRequestOptions())
	require.NoError(t, err)
	res, err = req.Execute(context.Background(), src, priorities)
	require.NoError(t, err)
	require.Equal(t, []string{"phone"}, res[0].DataOrigins)
	require.True(t, res[0].Value.Equal(decimal.NewFromInt(30*60*1000)))
}

func TestExecute_PriorityMasking(t *testing.T) {
	at := func(h, m int) time.Time {
		return d0.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}
	millis := func(m int64) int64 { return m * 60 * 1000 }
	steps := func(origin string, start time.Time, d time.Duration, count int) coreagg.RawRecordRow {
		return coreagg.RawRecordRow{
			RecordType: coreagg.RecordTypeSteps,
			DataOrigin: origin,
			StartTime:  start,
			EndTime:    start.Add(d),
			Payload:    map[string]interface{}{coreagg.FieldCount: count},
		}
	}
	local, err := coreagg.NewLocalWindow(d0, d0.Add(24*time.Hour))
	require.NoError(t, err)
	morning := mustInstant(t, at(10, 0), at(13, 0))
	watchFirst := []string{"watch", "phone"}

	tests := []struct {
		name    string
		id      coreagg.AggregationID
		rows    []coreagg.RawRecordRow
		order   []string
		window  coreagg.TimeWindow
		groupBy *coreagg.GroupBySpec
		want    []int64
		origins [][]string
	}{
		{
			name:    "lower priority keeps the time it alone covers",
			id:      coreagg.ActivityIntensityDurationTotal,
			rows:    []coreagg.RawRecordRow{intensityRow("watch", at(11, 0), time.Hour, coreagg.IntensityModerate), intensityRow("phone", at(10, 43), 47*time.Minute, coreagg.IntensityModerate)},
			order:   watchFirst,
			window:  morning,
			want:    []int64{millis(77)},
			origins: [][]string{{"phone", "watch"}},
		},
		{
			name:    "hourly buckets split a partially masked row",
			id:      coreagg.ActivityIntensityDurationTotal,
			rows:    []coreagg.RawRecordRow{intensityRow("watch", at(11, 0), time.Hour, coreagg.IntensityModerate), intensityRow("phone", at(10, 43), 47*time.Minute, coreagg.IntensityModerate)},
			order:   watchFirst,
			window:  mustInstant(t, at(10, 0), at(12, 0)),
			groupBy: hourly(t, "", false),
			want:    []int64{millis(17), millis(60)},
			origins: [][]string{{"phone"}, {"watch"}},
		},
		{
			name:    "minutes mask a lower priority vigorous row",
			id:      coreagg.ActivityIntensityMinutesTotal,
			rows:    []coreagg.RawRecordRow{intensityRow("watch", at(11, 0), time.Hour, coreagg.IntensityModerate), intensityRow("phone", at(10, 55), 82*time.Minute, coreagg.IntensityVigorous)},
			order:   watchFirst,
			window:  morning,
			want:    []int64{(5+17)*2 + 60},
			origins: [][]string{{"phone", "watch"}},
		},
		{
			name:    "minutes mask a lower priority moderate row",
			id:      coreagg.ActivityIntensityMinutesTotal,
			rows:    []coreagg.RawRecordRow{intensityRow("watch", at(11, 0), time.Hour, coreagg.IntensityVigorous), intensityRow("phone", at(10, 55), 82*time.Minute, coreagg.IntensityModerate)},
			order:   watchFirst,
			window:  morning,
			want:    []int64{60*2 + 5 + 17},
			origins: [][]string{{"phone", "watch"}},
		},
		{
			name:    "top origin outside a local window masks nothing inside it",
			id:      coreagg.ActivityIntensityDurationTotal,
			rows:    []coreagg.RawRecordRow{intensityRow("watch", at(-10, 0), 30*time.Minute, coreagg.IntensityModerate), intensityRow("phone", at(2, 0), 30*time.Minute, coreagg.IntensityModerate)},
			order:   watchFirst,
			window:  local,
			want:    []int64{millis(30)},
			origins: [][]string{{"phone"}},
		},
		{
			name:    "prorated value shrinks to the visible share",
			id:      coreagg.StepsCountTotal,
			rows:    []coreagg.RawRecordRow{steps("phone", at(10, 30), time.Hour, 600), steps("watch", at(11, 0), time.Hour, 100)},
			order:   watchFirst,
			window:  morning,
			want:    []int64{300 + 100},
			origins: [][]string{{"phone", "watch"}},
		},
		{
			name:    "unranked overlaps are counted once",
			id:      coreagg.ActivityIntensityDurationTotal,
			rows:    []coreagg.RawRecordRow{intensityRow("watch", at(11, 0), 30*time.Minute, coreagg.IntensityModerate), intensityRow("watch", at(11, 10), 30*time.Minute, coreagg.IntensityModerate)},
			window:  morning,
			want:    []int64{millis(40)},
			origins: [][]string{{"watch"}},
		},
		{
			name:    "fully covered row attributes no origin",
			id:      coreagg.ActivityIntensityDurationTotal,
			rows:    []coreagg.RawRecordRow{intensityRow("watch", at(11, 0), time.Hour, coreagg.IntensityModerate), intensityRow("phone", at(11, 15), 15*time.Minute, coreagg.IntensityModerate)},
			order:   watchFirst,
			window:  morning,
			want:    []int64{millis(60)},
			origins: [][]string{{"watch"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := memory.NewRowSource()
			src.Add(tc.rows...)

			var priorities coreagg.PriorityProvider
			if tc.order != nil {
				priorities = coreagg.NewStaticPriorityRepository(map[coreagg.Category][]string{
					coreagg.CategoryActivity: tc.order,
				})
			}

			aggType := mustType(t, tc.id)
			req, err := NewAggregateRecordRequest(aggType, aggType.RecordType, tc.window, tc.groupBy, nil, DefaultRequestOptions())
			require.NoError(t, err)
			res, err := req.Execute(context.Background(), src, priorities)
			require.NoError(t, err)

			require.Len(t, res, len(tc.want))
			for i, want := range tc.want {
				require.True(t, res[i].HasValue, "bucket %d", i)
				require.True(t, res[i].Value.Equal(decimal.NewFromInt(want)), "bucket %d: want=%d got=%s", i, want, res[i].Value)
				require.Equal(t, tc.origins[i], res[i].DataOrigins, "bucket %d", i)
			}
		})
	}
}

func TestExecute_GroupByEndTime(t *testing.T) {
	src := memory.NewRowSource()
	src.Add(
		intensityRow("watch", d0.Add(-10*time.Minute), 20*time.Minute, coreagg.IntensityModerate),
		intensityRow("watch", d0.Add(50*time.Minute), 20*time.Minute, coreagg.IntensityModerate),
	)

	w := mustInstant(t, d0, d0.Add(time.Hour))
	byStart := execute(t, src, coreagg.ActivityIntensityDurationTotal, w, hourly(t, coreagg.ColumnStartTime, false))
	byEnd := execute(t, src, coreagg.ActivityIntensityDurationTotal, w, hourly(t, coreagg.ColumnEndTime, false))

	require.True(t, byStart[0].Value.Equal(decimal.NewFromInt(20*60*1000)))
	require.True(t, byEnd[0].Value.Equal(decimal.NewFromInt(10*60*1000)), "row ending after the window is dropped")
}

func TestExecute_GroupByEndTimePlacesRowInOneBucket(t *testing.T) {
	src := memory.NewRowSource()
	src.Add(intensityRow("watch", d0.Add(50*time.Minute), 20*time.Minute, coreagg.IntensityModerate))

	w := mustInstant(t, d0, d0.Add(2*time.Hour))
	res := execute(t, src, coreagg.ActivityIntensityDurationTotal, w, hourly(t, coreagg.ColumnEndTime, false))
	require.Len(t, res, 2)

	require.False(t, res[0].HasValue)
	require.Empty(t, res[0].DataOrigins)
	require.True(t, res[1].HasValue)
	require.True(t, res[1].Value.Equal(decimal.NewFromInt(20*60*1000)))
	require.Equal(t, []string{"watch"}, res[1].DataOrigins)
}

func TestExecute_LocalTimeUsesRowOffsets(t *testing.T) {
	src := memory.NewRowSource()
	// 23:30Z at UTC-2 is 21:30 local; at UTC+2 00:30Z is 02:30 local.
	west := intensityRow("watch", d0.Add(23*time.Hour+30*time.Minute), 10*time.Minute, coreagg.IntensityModerate)
	west.StartZoneOffset, west.EndZoneOffset = -2*3600, -2*3600
	east := intensityRow("phone", d0.Add(24*time.Hour+30*time.Minute), 10*time.Minute, coreagg.IntensityModerate)
	east.StartZoneOffset, east.EndZoneOffset = 2*3600, 2*3600
	src.Add(west, east)

	w, err := coreagg.NewLocalWindow(d0, d0.Add(24*time.Hour))
	require.NoError(t, err)

	res := execute(t, src, coreagg.ActivityIntensityDurationTotal, w, nil)
	require.Len(t, res, 1)
	require.True(t, res[0].Value.Equal(decimal.NewFromInt(10*60*1000)))
	require.Equal(t, []string{"watch"}, res[0].DataOrigins)
	require.NotNil(t, res[0].ZoneOffset)
	require.Equal(t, -2*3600, *res[0].ZoneOffset)
}

func TestExecute_RowSourceErrorPropagatesUnchanged(t *testing.T) {
	boom := errors.New("disk on fire")
	src := storagemocks.NewRowSource(t)
	src.EXPECT().
		FetchRows(mock.Anything, coreagg.RecordTypeSteps, mock.Anything, []string(nil)).
		Return(nil, boom).
		Once()

	at := mustType(t, coreagg.StepsCountTotal)
	req, err := NewAggregateRecordRequest(at, at.RecordType, mustInstant(t, d0, d0.Add(time.Hour)), nil, nil, DefaultRequestOptions())
	require.NoError(t, err)

	_, err = req.Execute(context.Background(), src, nil)
	require.Same(t, boom, err)
}

func TestExecute_LocalWindowFetchesPaddedInstantWindow(t *testing.T) {
	src := storagemocks.NewRowSource(t)
	src.EXPECT().
		FetchRows(mock.Anything, coreagg.RecordTypeSteps, mock.Anything, mock.Anything).
		Run(func(_ context.Context, _ coreagg.RecordType, w coreagg.TimeWindow, _ []string) {
			require.False(t, w.Local)
			require.Equal(t, d0.Add(-14*time.Hour), w.Start)
			require.Equal(t, d0.Add(38*time.Hour), w.End)
		}).
		Return(nil, nil).
		Once()

	w, err := coreagg.NewLocalWindow(d0, d0.Add(24*time.Hour))
	require.NoError(t, err)
	at := mustType(t, coreagg.StepsCountTotal)
	req, err := NewAggregateRecordRequest(at, at.RecordType, w, nil, nil, RequestOptions{})
	require.NoError(t, err)

	res, err := req.Execute(context.Background(), src, nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.False(t, res[0].HasValue)
}
