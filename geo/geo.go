// Package geo holds the geometric route features: great-circle distance,
// initial bearing and the planar helpers used when synthesizing training routes.
package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether lat is within [-90,90] and lon within [-180,180].
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return s2.LatLngFromDegrees(c.Lat, c.Lon).IsValid()
}

func radians(deg float64) float64 {
	return (s1.Angle(deg) * s1.Degree).Radians()
}

// Distance returns the haversine distance between a and b in kilometers.
func Distance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	angle := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon))
	return angle.Radians() * EarthRadiusKm
}

// Bearing returns the initial compass bearing from a to b in degrees, within [0,360).
// The bearing between identical points is undefined; 0 is returned for it.
func Bearing(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLon := radians(b.Lon) - radians(a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := s1.Angle(math.Atan2(y, x)).Degrees()
	deg = math.Mod(deg+360, 360)
	if deg >= 360 {
		// -tiny + 360 can round up to exactly 360
		deg = 0
	}
	return deg
}

// Interpolate returns n+1 evenly spaced points on the straight lat/lon segment
// from a to b, both endpoints included. It is a planar approximation.
func Interpolate(a, b Coordinate, n int) []Coordinate {
	if n < 1 {
		return []Coordinate{a}
	}
	points := make([]Coordinate, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		points = append(points, Coordinate{
			Lat: a.Lat + (b.Lat-a.Lat)*t,
			Lon: a.Lon + (b.Lon-a.Lon)*t,
		})
	}
	return points
}

// PlanarDistance is the Euclidean distance in raw degree space.
func PlanarDistance(a, b Coordinate) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}
