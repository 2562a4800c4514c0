// Package datekey derives business-day keys. A business day starts at a fixed
// cutoff hour in one fixed timezone, so late-night activity still belongs to
// the previous day.
package datekey

import (
	"fmt"
	"time"
)

// Layout is the textual form of every date-key.
const Layout = "2006-01-02"

type Calendar struct {
	loc        *time.Location
	cutoffHour int
}

func New(loc *time.Location, cutoffHour int) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, cutoffHour: cutoffHour}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Key returns the business day that t falls in. The cutoff is compared
// against the local wall clock, so DST changes do not move it.
func (c *Calendar) Key(t time.Time) string {
	lt := t.In(c.loc)
	y, m, d := lt.Date()
	if lt.Hour() < c.cutoffHour {
		d--
	}
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Format(Layout)
}

// Bounds returns the half-open interval [start, end) covered by key.
func (c *Calendar) Bounds(key string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(Layout, key, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), c.cutoffHour, 0, 0, 0, c.loc)
	next := time.Date(d.Year(), d.Month(), d.Day()+1, c.cutoffHour, 0, 0, 0, c.loc)
	return start, next, nil
}

// Parse returns the calendar date of key at midnight UTC.
func Parse(key string) (time.Time, error) {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

func Valid(key string) bool {
	_, err := time.Parse(Layout, key)
	return err == nil
}

// AddDays shifts key by n calendar days.
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Range returns every key from first to last inclusive, oldest first.
func Range(first, last string) ([]string, error) {
	start, err := Parse(first)
	if err != nil {
		return nil, err
	}
	end, err := Parse(last)
	if err != nil {
		return nil, err
	}
	var keys []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(Layout))
	}
	return keys, nil
}
