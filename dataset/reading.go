package dataset

import (
	"sort"
	"time"

	"route-traffic-api/features"
	"route-traffic-api/geo"
)

// SensorReading is one ground-truth point observation.
type SensorReading struct {
	Position     geo.Coordinate `json:"position"`
	Time         time.Time      `json:"time"`
	AverageSpeed float64        `json:"average_speed_kmh"`
}

// Group holds every reading taken at the same instant.
type Group struct {
	Time     time.Time
	Readings []SensorReading
}

// Sample is one labeled training row.
type Sample struct {
	Features     features.Vector
	AverageSpeed float64
}

// GroupByTimestamp buckets readings by wall-clock timestamp, the same clock
// the temporal features read, so offsets that name one instant at different
// local times stay apart. Groups come back ordered by wall clock; readings
// inside a group keep their input order.
func GroupByTimestamp(readings []SensorReading) []Group {
	index := make(map[time.Time]int)
	var groups []Group
	var keys []time.Time
	for _, r := range readings {
		key := wallClock(r.Time)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Time: r.Time})
			keys = append(keys, key)
		}
		groups[i].Readings = append(groups[i].Readings, r)
	}

	order := make([]int, len(groups))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]].Before(keys[order[b]])
	})
	sorted := make([]Group, len(groups))
	for i, j := range order {
		sorted[i] = groups[j]
	}
	return sorted
}

// wallClock drops the zone and keeps the clock reading.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
