// Package features builds the route feature vector shared by training and
// inference. Build is the only constructor of Vector; both the dataset
// generator and the prediction path go through it.
package features

import (
	"time"

	"route-traffic-api/geo"
)

// columns is the one ordered definition of the model row: each feature name
// next to the field it reads.
var columns = []struct {
	name  string
	value func(Vector) float64
}{
	{"start_lat", func(v Vector) float64 { return v.StartLat }},
	{"start_lon", func(v Vector) float64 { return v.StartLon }},
	{"end_lat", func(v Vector) float64 { return v.EndLat }},
	{"end_lon", func(v Vector) float64 { return v.EndLon }},
	{"distance", func(v Vector) float64 { return v.DistanceKm }},
	{"bearing", func(v Vector) float64 { return v.BearingDeg }},
	{"hour", func(v Vector) float64 { return float64(v.Hour) }},
	{"day_of_week", func(v Vector) float64 { return float64(v.DayOfWeek) }},
	{"month", func(v Vector) float64 { return float64(v.Month) }},
}

// Schema returns a copy of the ordered feature names the model artifact is trained on.
func Schema() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// NumFeatures is the length of a model row.
func NumFeatures() int {
	return len(columns)
}

type RouteQuery struct {
	Start geo.Coordinate
	End   geo.Coordinate
	Time  time.Time
}

type Vector struct {
	StartLat   float64
	StartLon   float64
	EndLat     float64
	EndLon     float64
	DistanceKm float64
	BearingDeg float64
	Temporal
}

func Build(q RouteQuery) Vector {
	return Vector{
		StartLat:   q.Start.Lat,
		StartLon:   q.Start.Lon,
		EndLat:     q.End.Lat,
		EndLon:     q.End.Lon,
		DistanceKm: geo.Distance(q.Start, q.End),
		BearingDeg: geo.Bearing(q.Start, q.End),
		Temporal:   ExtractTemporal(q.Time),
	}
}

// Values returns the vector as a single model row, in Schema order.
func (v Vector) Values() []float64 {
	row := make([]float64, len(columns))
	for i, c := range columns {
		row[i] = c.value(v)
	}
	return row
}

// MatchesSchema reports whether names equals Schema element by element.
func MatchesSchema(names []string) bool {
	if len(names) != len(columns) {
		return false
	}
	for i, name := range names {
		if name != columns[i].name {
			return false
		}
	}
	return true
}
