package features

import (
	"testing"
	"time"

	"route-traffic-api/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTemporal(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want Temporal
	}{
		// 2025-11-27 is a Thursday
		{"thursday morning", time.Date(2025, 11, 27, 8, 30, 0, 0, time.UTC), Temporal{Hour: 8, DayOfWeek: 3, Month: 11}},
		{"monday is zero", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), Temporal{Hour: 0, DayOfWeek: 0, Month: 12}},
		{"sunday is six", time.Date(2025, 11, 30, 23, 59, 0, 0, time.UTC), Temporal{Hour: 23, DayOfWeek: 6, Month: 11}},
		{"january", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), Temporal{Hour: 12, DayOfWeek: 0, Month: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTemporal(tt.ts))
		})
	}
}

func TestExtractTemporalKeepsWallClock(t *testing.T) {
	istanbul := time.FixedZone("+03", 3*60*60)
	ts := time.Date(2025, 11, 27, 8, 30, 0, 0, istanbul)

	got := ExtractTemporal(ts)
	assert.Equal(t, 8, got.Hour, "hour must not be converted to UTC")
}

func TestBuildMatchesDirectComputation(t *testing.T) {
	q := RouteQuery{
		Start: geo.Coordinate{Lat: 40.9982, Lon: 29.0643},
		End:   geo.Coordinate{Lat: 41.0421, Lon: 29.2510},
		Time:  time.Date(2025, 11, 27, 8, 30, 0, 0, time.UTC),
	}
	v := Build(q)

	assert.Equal(t, q.Start.Lat, v.StartLat)
	assert.Equal(t, q.Start.Lon, v.StartLon)
	assert.Equal(t, q.End.Lat, v.EndLat)
	assert.Equal(t, q.End.Lon, v.EndLon)
	assert.Equal(t, geo.Distance(q.Start, q.End), v.DistanceKm)
	assert.Equal(t, geo.Bearing(q.Start, q.End), v.BearingDeg)
	assert.Equal(t, ExtractTemporal(q.Time), v.Temporal)
}

func TestValuesFollowSchemaOrder(t *testing.T) {
	v := Vector{
		StartLat:   1,
		StartLon:   2,
		EndLat:     3,
		EndLon:     4,
		DistanceKm: 5,
		BearingDeg: 6,
		Temporal:   Temporal{Hour: 7, DayOfWeek: 8, Month: 9},
	}
	values := v.Values()
	require.Len(t, values, NumFeatures())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, values)
}

func TestMatchesSchema(t *testing.T) {
	assert.True(t, MatchesSchema([]string{"start_lat", "start_lon", "end_lat", "end_lon", "distance", "bearing", "hour", "day_of_week", "month"}))
	assert.False(t, MatchesSchema([]string{"start_lon", "start_lat", "end_lat", "end_lon", "distance", "bearing", "hour", "day_of_week", "month"}))
	assert.False(t, MatchesSchema(Schema()[:8]))
	assert.False(t, MatchesSchema(nil))
}

func TestSchemaNamesEachField(t *testing.T) {
	base := Vector{}
	fields := map[string]func(*Vector){
		"start_lat":   func(v *Vector) { v.StartLat = 1 },
		"start_lon":   func(v *Vector) { v.StartLon = 1 },
		"end_lat":     func(v *Vector) { v.EndLat = 1 },
		"end_lon":     func(v *Vector) { v.EndLon = 1 },
		"distance":    func(v *Vector) { v.DistanceKm = 1 },
		"bearing":     func(v *Vector) { v.BearingDeg = 1 },
		"hour":        func(v *Vector) { v.Hour = 1 },
		"day_of_week": func(v *Vector) { v.DayOfWeek = 1 },
		"month":       func(v *Vector) { v.Month = 1 },
	}
	names := Schema()
	require.Len(t, names, len(fields))
	for i, name := range names {
		set, ok := fields[name]
		require.True(t, ok, "unexpected feature %q", name)
		v := base
		set(&v)
		row := v.Values()
		for j, x := range row {
			if j == i {
				assert.Equal(t, 1.0, x, "%s not at position %d", name, i)
			} else {
				assert.Zero(t, x, "%s leaked into position %d", name, j)
			}
		}
	}
}

func TestSchemaReturnsCopy(t *testing.T) {
	names := Schema()
	names[0] = "tampered"
	assert.Equal(t, "start_lat", Schema()[0])
	assert.True(t, MatchesSchema(Schema()))
}
