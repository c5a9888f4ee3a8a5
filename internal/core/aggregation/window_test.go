package aggregation

import (
	"errors"
	"testing"
	"time"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
	"github.com/stretchr/testify/require"
)

func TestParseWindowSize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantSize  time.Duration
		wantError bool
	}{
		{name: "minute", input: "1m", wantSize: time.Minute},
		{name: "hour", input: "2h", wantSize: 2 * time.Hour},
		{name: "days suffix", input: "3d", wantSize: 72 * time.Hour},
		{name: "empty invalid", input: "", wantError: true},
		{name: "negative invalid", input: "-1m", wantError: true},
		{name: "zero invalid", input: "0m", wantError: true},
		{name: "bad day format invalid", input: "xd", wantError: true},
		{name: "unknown unit invalid", input: "10x", wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := ParseWindowSize(tc.input)
			if tc.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantSize, spec.Size)
		})
	}
}

func TestNewInstantWindow_RejectsInverted(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewInstantWindow(start, start.Add(-time.Second))
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrValidation))

	w, err := NewInstantWindow(start, start)
	require.NoError(t, err)
	require.Zero(t, w.Duration())
}

func TestNewLocalWindow_KeepsWallClock(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, tokyo)

	w, err := NewLocalWindow(start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.True(t, w.Local)
	require.Equal(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), w.Start)

	fetch := w.FetchWindow(14 * time.Hour)
	require.False(t, fetch.Local)
	require.Equal(t, w.Start.Add(-14*time.Hour), fetch.Start)
	require.Equal(t, w.End.Add(14*time.Hour), fetch.End)
}

func TestGroupBySpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    GroupBySpec
		wantErr bool
	}{
		{name: "duration", spec: GroupBySpec{Duration: time.Hour}},
		{name: "period", spec: GroupBySpec{Period: Period{Days: 1}}},
		{name: "both", spec: GroupBySpec{Duration: time.Hour, Period: Period{Days: 1}}, wantErr: true},
		{name: "neither", spec: GroupBySpec{}, wantErr: true},
		{name: "negative duration", spec: GroupBySpec{Duration: -time.Hour}, wantErr: true},
		{name: "negative period", spec: GroupBySpec{Period: Period{Months: 1, Days: -1}}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.wantErr {
				require.ErrorIs(t, err, apperr.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestGroupBySpec_BucketsTileWindow(t *testing.T) {
	start := time.Date(2026, 1, 31, 6, 0, 0, 0, time.UTC)
	w, err := NewInstantWindow(start, start.Add(100*24*time.Hour+5*time.Hour))
	require.NoError(t, err)

	specs := map[string]GroupBySpec{
		"duration 7h":   {Duration: 7 * time.Hour},
		"period 1 day":  {Period: Period{Days: 1}},
		"period 1 week": {Period: Period{Days: 7}},
		"period 1 mon":  {Period: Period{Months: 1}},
		"period 1 year": {Period: Period{Years: 1}},
	}

	for name, spec := range specs {
		for _, descending := range []bool{false, true} {
			spec.Descending = descending
			t.Run(name, func(t *testing.T) {
				buckets, err := spec.Buckets(w, 0)
				require.NoError(t, err)
				require.NotEmpty(t, buckets)

				asc := buckets
				if descending {
					asc = make([]Bucket, len(buckets))
					for i := range buckets {
						asc[i] = buckets[len(buckets)-1-i]
					}
				}

				require.Equal(t, w.Start, asc[0].Start)
				require.Equal(t, w.End, asc[len(asc)-1].End)
				for i, b := range asc {
					require.True(t, b.End.After(b.Start), "bucket %d is empty", i)
					if i > 0 {
						require.Equal(t, asc[i-1].End, b.Start, "gap or overlap before bucket %d", i)
					}
				}
			})
		}
	}
}

func TestGroupBySpec_LastBucketClipped(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w, err := NewInstantWindow(start, start.Add(150*time.Minute))
	require.NoError(t, err)

	spec, err := NewGroupByDuration(time.Hour, "", false)
	require.NoError(t, err)

	buckets, err := spec.Buckets(w, 0)
	require.NoError(t, err)
	require.Equal(t, []Bucket{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start.Add(time.Hour), End: start.Add(2 * time.Hour)},
		{Start: start.Add(2 * time.Hour), End: start.Add(150 * time.Minute)},
	}, buckets)
}

func TestGroupBySpec_DescendingReversesOnly(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w, err := NewInstantWindow(start, start.Add(3*24*time.Hour))
	require.NoError(t, err)

	asc, err := GroupBySpec{Period: Period{Days: 1}}.Buckets(w, 0)
	require.NoError(t, err)
	desc, err := GroupBySpec{Period: Period{Days: 1}, Descending: true}.Buckets(w, 0)
	require.NoError(t, err)

	require.Len(t, desc, 3)
	for i := range asc {
		require.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestGroupBySpec_EmptyWindowAndLimit(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	empty, err := NewInstantWindow(start, start)
	require.NoError(t, err)
	buckets, err := GroupBySpec{Duration: time.Hour}.Buckets(empty, 0)
	require.NoError(t, err)
	require.Equal(t, []Bucket{{Start: start, End: start}}, buckets)

	day, err := NewInstantWindow(start, start.Add(24*time.Hour))
	require.NoError(t, err)
	_, err = GroupBySpec{Duration: time.Minute}.Buckets(day, 100)
	require.ErrorIs(t, err, apperr.ErrValidation)
}
