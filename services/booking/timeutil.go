package booking

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// parseClock converts an "HH:mm" string to minutes from midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// formatClock renders minutes from midnight as "HH:mm".
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// rangesOverlap reports whether [aStart,aEnd) and [bStart,bEnd) share any
// amount of time.
func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// parseDate validates a "YYYY-MM-DD" date string.
func parseDate(date string) (time.Time, error) {
	return time.Parse(dateLayout, date)
}

// combineDateTime resolves a stored (date, "HH:mm") pair to an absolute
// instant in the given location.
func combineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := parseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, loc), nil
}
