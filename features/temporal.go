package features

import "time"

type Temporal struct {
	Hour      int `json:"hour"`
	DayOfWeek int `json:"day_of_week"`
	Month     int `json:"month"`
}

// ExtractTemporal reads the wall clock of t as given; no zone conversion is done.
// DayOfWeek counts from Monday=0 to Sunday=6.
func ExtractTemporal(t time.Time) Temporal {
	return Temporal{
		Hour:      t.Hour(),
		DayOfWeek: (int(t.Weekday()) + 6) % 7,
		Month:     int(t.Month()),
	}
}
