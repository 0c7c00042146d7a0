// Package daytime parses the day and time-of-day strings used throughout
// authored content ("2024-07-01" plus "09:00" or "09:00:30"), with an
// optional fixed UTC offset.
package daytime

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

var timeLayouts = []string{"15:04:05", "15:04"}

// Parse combines an authored day and time-of-day into a timestamp. When
// offset is empty the timestamp is UTC; otherwise offset must look like
// "-05:00" or "+02:00".
func Parse(day, timeOfDay, offset string) (time.Time, error) {
	for _, layout := range timeLayouts {
		full := layout
		value := day + "T" + timeOfDay
		if offset != "" {
			full += "Z07:00"
			value += offset
		}
		ts, err := time.Parse(DayLayout+"T"+full, value)
		if err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", day+"T"+timeOfDay+offset)
}

// ParseDay parses a bare authored day as a UTC midnight timestamp.
func ParseDay(day string) (time.Time, error) {
	ts, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse %q as a day", day)
	}
	return ts, nil
}

// ValidOffset reports whether offset is usable with Parse.
func ValidOffset(offset string) bool {
	if offset == "" {
		return true
	}
	_, err := time.Parse(DayLayout+"T15:04Z07:00", "2024-01-01T00:00"+offset)
	return err == nil
}
