package traffic

import (
	"encoding/json"
	"fmt"
	"strings"

	"route-traffic-api/features"
	"route-traffic-api/geo"
)

// RouteRequest is the /predict body. Coordinates may be sent as JSON numbers
// or numeric strings.
type RouteRequest struct {
	DateTime string      `json:"datetime"`
	StartLat json.Number `json:"start_lat"`
	StartLon json.Number `json:"start_lon"`
	EndLat   json.Number `json:"end_lat"`
	EndLon   json.Number `json:"end_lon"`
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ParseRequest validates req and turns it into a route query.
func ParseRequest(req RouteRequest) (features.RouteQuery, error) {
	if strings.TrimSpace(req.DateTime) == "" {
		return features.RouteQuery{}, invalid("datetime", "is required")
	}
	ts, err := features.ParseTime(req.DateTime)
	if err != nil {
		return features.RouteQuery{}, invalid("datetime", "invalid format, example: 2025-11-27T08:30")
	}

	startLat, err := parseFloat("start_lat", req.StartLat)
	if err != nil {
		return features.RouteQuery{}, err
	}
	startLon, err := parseFloat("start_lon", req.StartLon)
	if err != nil {
		return features.RouteQuery{}, err
	}
	endLat, err := parseFloat("end_lat", req.EndLat)
	if err != nil {
		return features.RouteQuery{}, err
	}
	endLon, err := parseFloat("end_lon", req.EndLon)
	if err != nil {
		return features.RouteQuery{}, err
	}

	start := geo.Coordinate{Lat: startLat, Lon: startLon}
	if !start.Valid() {
		return features.RouteQuery{}, invalid("start", "coordinate out of range")
	}
	end := geo.Coordinate{Lat: endLat, Lon: endLon}
	if !end.Valid() {
		return features.RouteQuery{}, invalid("end", "coordinate out of range")
	}

	return features.RouteQuery{Start: start, End: end, Time: ts}, nil
}

func parseFloat(field string, n json.Number) (float64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, invalid(field, "is required")
	}
	v, err := json.Number(s).Float64()
	if err != nil {
		return 0, invalid(field, "must be a number")
	}
	return v, nil
}
