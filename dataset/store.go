package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadingStore persists raw sensor readings in the sensor_readings table.
// Timestamps are stored without zone so the wall clock round-trips unchanged.
type ReadingStore struct {
	pool *pgxpool.Pool
}

func NewReadingStore(pool *pgxpool.Pool) *ReadingStore {
	return &ReadingStore{pool: pool}
}

func (s *ReadingStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sensor_readings (
			ts            TIMESTAMP        NOT NULL,
			latitude      DOUBLE PRECISION NOT NULL,
			longitude     DOUBLE PRECISION NOT NULL,
			average_speed DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (ts, latitude, longitude)
		)
	`)
	if err != nil {
		return fmt.Errorf("create sensor_readings: %w", err)
	}
	return nil
}

// Insert stores r; a reading already present for the same instant and position is kept.
func (s *ReadingStore) Insert(ctx context.Context, r SensorReading) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO sensor_readings (ts, latitude, longitude, average_speed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ts, latitude, longitude) DO NOTHING
	`, r.Time, r.Position.Lat, r.Position.Lon, r.AverageSpeed)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Load returns readings with from <= ts < to, oldest first. Zero bounds are open.
func (s *ReadingStore) Load(ctx context.Context, from, to time.Time) ([]SensorReading, error) {
	query := `SELECT ts, latitude, longitude, average_speed FROM sensor_readings WHERE TRUE`
	var args []any
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND ts >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND ts < $%d", len(args))
	}
	query += " ORDER BY ts"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sensor_readings: %w", err)
	}
	defer rows.Close()

	var readings []SensorReading
	for rows.Next() {
		var r SensorReading
		if err := rows.Scan(&r.Time, &r.Position.Lat, &r.Position.Lon, &r.AverageSpeed); err != nil {
			return nil, fmt.Errorf("scan sensor reading: %w", err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sensor readings: %w", err)
	}
	return readings, nil
}
