package dataset

import (
	"math/rand"
	"time"

	"route-traffic-api/features"
	"route-traffic-api/geo"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultRoutesPerGroup = 5
	DefaultRoutePoints    = 12

	progressEvery = 100
)

// Rand is the sampling source. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Generator samples routes from readings. NewGenerator is the usual
// constructor; on a zero Generator the unset fields take the defaults and a
// time-seeded source on first use.
type Generator struct {
	RoutesPerGroup int
	RoutePoints    int
	Rand           Rand
	Log            logrus.FieldLogger
}

func NewGenerator(rng Rand, log logrus.FieldLogger) *Generator {
	g := &Generator{
		RoutesPerGroup: DefaultRoutesPerGroup,
		RoutePoints:    DefaultRoutePoints,
		Rand:           rng,
		Log:            log,
	}
	g.applyDefaults()
	return g
}

func (g *Generator) applyDefaults() {
	if g.RoutesPerGroup <= 0 {
		g.RoutesPerGroup = DefaultRoutesPerGroup
	}
	if g.RoutePoints <= 0 {
		g.RoutePoints = DefaultRoutePoints
	}
	if g.Rand == nil {
		g.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// Generate turns point readings into route samples. Readings are grouped by
// timestamp and each group contributes up to RoutesPerGroup disjoint routes.
func (g *Generator) Generate(readings []SensorReading) []Sample {
	groups := GroupByTimestamp(readings)

	var samples []Sample
	for i, group := range groups {
		samples = append(samples, g.GenerateGroup(group)...)

		if g.Log != nil && (i+1)%progressEvery == 0 {
			g.Log.WithFields(logrus.Fields{
				"groups":  i + 1,
				"total":   len(groups),
				"samples": len(samples),
			}).Info("route dataset progress")
		}
	}

	if g.Log != nil {
		g.Log.WithFields(logrus.Fields{
			"readings": len(readings),
			"groups":   len(groups),
			"samples":  len(samples),
		}).Info("route dataset generated")
	}
	return samples
}

// GenerateGroup samples routes from readings sharing one timestamp.
func (g *Generator) GenerateGroup(group Group) []Sample {
	g.applyDefaults()

	n := len(group.Readings)
	if n < 2 {
		return nil
	}

	routes := g.RoutesPerGroup
	if routes > n/2 {
		routes = n / 2
	}

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}

	samples := make([]Sample, 0, routes)
	for r := 0; r < routes; r++ {
		if len(pool) < 2 {
			break
		}
		var start, end int
		start, pool = g.draw(pool)
		end, pool = g.draw(pool)

		from := group.Readings[start].Position
		to := group.Readings[end].Position

		samples = append(samples, Sample{
			Features: features.Build(features.RouteQuery{
				Start: from,
				End:   to,
				Time:  group.Time,
			}),
			AverageSpeed: g.routeSpeed(group.Readings, from, to),
		})
	}
	return samples
}

// draw removes a random element from pool, keeping the order of the rest.
func (g *Generator) draw(pool []int) (int, []int) {
	i := g.Rand.Intn(len(pool))
	picked := pool[i]
	return picked, append(pool[:i], pool[i+1:]...)
}

// routeSpeed averages the speed of the nearest reading to each interpolated point.
func (g *Generator) routeSpeed(readings []SensorReading, from, to geo.Coordinate) float64 {
	points := geo.Interpolate(from, to, g.RoutePoints)
	speeds := make([]float64, 0, len(points))
	for _, p := range points {
		speeds = append(speeds, nearest(readings, p).AverageSpeed)
	}
	return stat.Mean(speeds, nil)
}

// nearest returns the first reading at minimal planar distance from p.
func nearest(readings []SensorReading, p geo.Coordinate) SensorReading {
	best := 0
	bestDist := geo.PlanarDistance(readings[0].Position, p)
	for i := 1; i < len(readings); i++ {
		if d := geo.PlanarDistance(readings[i].Position, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return readings[best]
}
