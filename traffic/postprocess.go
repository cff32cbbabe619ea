package traffic

import (
	"math"
	"strconv"
)

const (
	MinSpeedKmh = 5.0
	MaxSpeedKmh = 130.0

	lightTrafficFloor    = 50.0
	moderateTrafficFloor = 30.0
)

const (
	LevelLight    = 0
	LevelModerate = 1
	LevelHeavy    = 2
)

var levelLabels = map[int]string{
	LevelLight:    "Az",
	LevelModerate: "Orta",
	LevelHeavy:    "Çok",
}

// LevelLabel returns the display label of a traffic level, or "" if unknown.
func LevelLabel(level int) string {
	return levelLabels[level]
}

// HourMultiplier is the time-of-day correction applied to the raw model speed.
func HourMultiplier(hour int) float64 {
	switch {
	case hour >= 22 || hour < 6:
		return 1.40
	case hour >= 7 && hour <= 10:
		return 0.70
	case hour >= 17 && hour <= 20:
		return 0.65
	default:
		return 1.10
	}
}

// AdjustForHour scales raw by the hour multiplier and clamps to [MinSpeedKmh, MaxSpeedKmh].
func AdjustForHour(raw float64, hour int) float64 {
	adjusted := raw * HourMultiplier(hour)
	return math.Min(MaxSpeedKmh, math.Max(MinSpeedKmh, adjusted))
}

// Classify maps a speed to a traffic level; each band includes its lower bound.
func Classify(speed float64) (int, string) {
	level := LevelHeavy
	switch {
	case speed >= lightTrafficFloor:
		level = LevelLight
	case speed >= moderateTrafficFloor:
		level = LevelModerate
	}
	return level, levelLabels[level]
}

// ETAMinutes returns the travel time in minutes, rounded to one decimal.
func ETAMinutes(distanceKm, speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return round(distanceKm/speedKmh*60, 1)
}

// round rounds the exact binary value of v to the given decimals, ties to even.
func round(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
