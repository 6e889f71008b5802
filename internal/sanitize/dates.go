package sanitize

import "time"

// ParseDate parses a sanitized or raw date-shaped value into a UTC midnight
// time. It applies the same segment-over-12 heuristic as canonicalization and
// rejects impossible calendar dates (day 31 in a 30-day month, and so on).
func ParseDate(v string) (time.Time, bool) {
	month, day, year, ok := splitDate(v)
	if !ok || !isRealDate(year, month, day) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
