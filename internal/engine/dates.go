package engine

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date used by the dataset.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// DateRange returns every calendar day from start to end, both included.
func DateRange(start, end time.Time) ([]time.Time, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(DateLayout), end.Format(DateLayout))
	}

	days := make([]time.Time, 0, DaysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// EnumerateDates is DateRange over ISO date strings.
func EnumerateDates(start, end string) ([]string, error) {
	s, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil, err
	}

	days, err := DateRange(s, e)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(DateLayout)
	}
	return out, nil
}

// ShortLabel drops the leading year: "2020-09-01" -> "09-01".
func ShortLabel(date string) string {
	if _, rest, found := strings.Cut(date, "-"); found {
		return rest
	}
	return date
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from start to end. It works on Unix
// seconds since time.Duration saturates after roughly 292 years.
func DaysBetween(start, end time.Time) int {
	return int((truncateDay(end).Unix() - truncateDay(start).Unix()) / secondsPerDay)
}
