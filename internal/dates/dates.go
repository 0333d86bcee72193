// Package dates handles the DD/MM/YYYY calendar dates used by financial records.
// All values are civil dates expressed in UTC so day arithmetic is free of DST gaps.
package dates

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Day is the unit occupancy is counted in.
const Day = 24 * time.Hour

// Layout is the canonical record date layout.
const Layout = "02/01/2006"

// ParseDate parses DD/MM/YYYY. It reports false for empty input or anything that
// does not split into exactly three numeric parts. Out-of-range days roll over the
// way time.Date normalizes them (31/02 becomes early March).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, false
		}
		n[i] = v
	}
	return time.Date(n[2], time.Month(n[1]), n[0], 0, 0, 0, 0, time.UTC), true
}

// ParseQuery parses the dates users type in filters: ISO YYYY-MM-DD or
// DD/MM/YYYY.
func ParseQuery(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return ParseDate(s)
}

// MustParse is ParseDate for literals in tests and fixtures.
func MustParse(s string) time.Time {
	t, ok := ParseDate(s)
	if !ok {
		panic(fmt.Sprintf("dates: invalid date %q", s))
	}
	return t
}

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(Layout)
}

// NormalizeDayStart clamps t to 00:00:00.000 of its calendar day.
func NormalizeDayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeDayEnd clamps t to 23:59:59.999 of its calendar day.
func NormalizeDayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// FirstOfMonth returns the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LastOfMonth returns the last day of t's month.
func LastOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// MonthKey is the chart bucket label, e.g. "11/2025".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

// Days expresses d as a fractional number of days.
func Days(d time.Duration) float64 {
	return float64(d) / float64(Day)
}

// OverlapDays returns how many whole days the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share: ceil((overlapEnd - overlapStart) / 1 day), or 0 when they
// don't intersect.
func OverlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if start.After(end) {
		return 0
	}
	return int(math.Ceil(Days(end.Sub(start))))
}
