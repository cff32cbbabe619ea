package features

import (
	"fmt"
	"strings"
	"time"
)

var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseTime accepts ISO-8601 timestamps with or without seconds, fractions
// and zone offset, using either 'T' or a space between date and time.
// Values without an offset are taken as wall-clock time (UTC location).
func ParseTime(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported datetime %q, expected e.g. 2025-11-27T08:30", value)
}
