package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"route-traffic-api/features"
	"route-traffic-api/geo"
)

// Column names of the sensor export.
const (
	ColumnDateTime     = "DATE_TIME"
	ColumnLatitude     = "LATITUDE"
	ColumnLongitude    = "LONGITUDE"
	ColumnAverageSpeed = "AVERAGE_SPEED"
)

var requiredColumns = []string{ColumnDateTime, ColumnLatitude, ColumnLongitude, ColumnAverageSpeed}

func LoadCSVFile(path string) ([]SensorReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sensor csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads sensor readings from a header-first CSV stream. Columns may
// appear in any order and extra columns are ignored.
func ReadCSV(r io.Reader) ([]SensorReading, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv missing column %s", name)
		}
	}

	var readings []SensorReading
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		reading, err := parseRecord(record, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

func parseRecord(record []string, cols map[string]int) (SensorReading, error) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ts, err := features.ParseTime(field(ColumnDateTime))
	if err != nil {
		return SensorReading{}, err
	}
	lat, err := strconv.ParseFloat(field(ColumnLatitude), 64)
	if err != nil {
		return SensorReading{}, fmt.Errorf("invalid %s: %w", ColumnLatitude, err)
	}
	lon, err := strconv.ParseFloat(field(ColumnLongitude), 64)
	if err != nil {
		return SensorReading{}, fmt.Errorf("invalid %s: %w", ColumnLongitude, err)
	}
	speed, err := strconv.ParseFloat(field(ColumnAverageSpeed), 64)
	if err != nil {
		return SensorReading{}, fmt.Errorf("invalid %s: %w", ColumnAverageSpeed, err)
	}

	pos := geo.Coordinate{Lat: lat, Lon: lon}
	if !pos.Valid() {
		return SensorReading{}, fmt.Errorf("coordinate out of range: %v", pos)
	}
	return SensorReading{Position: pos, Time: ts, AverageSpeed: speed}, nil
}

// WriteSamplesCSV writes samples with the feature Schema columns followed by avg_speed.
func WriteSamplesCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	header := append(features.Schema(), "avg_speed")
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, s := range samples {
		for i, v := range s.Features.Values() {
			row[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		row[len(row)-1] = strconv.FormatFloat(s.AverageSpeed, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
