package datekey

import (
	"testing"
	"time"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}
	return loc
}

func TestKeyCutoff(t *testing.T) {
	loc := newYork(t)
	cal := New(loc, 6)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"before cutoff belongs to previous day", time.Date(2024, 6, 9, 5, 59, 0, 0, loc), "2024-06-08"},
		{"at cutoff starts new day", time.Date(2024, 6, 9, 6, 0, 0, 0, loc), "2024-06-09"},
		{"late evening", time.Date(2024, 6, 9, 23, 30, 0, 0, loc), "2024-06-09"},
		{"utc instant converted", time.Date(2024, 6, 9, 9, 0, 0, 0, time.UTC), "2024-06-08"},
		{"new year before cutoff", time.Date(2025, 1, 1, 2, 0, 0, 0, loc), "2024-12-31"},
		{"spring forward after cutoff", time.Date(2024, 3, 10, 6, 30, 0, 0, loc), "2024-03-10"},
		{"spring forward before cutoff", time.Date(2024, 3, 10, 5, 30, 0, 0, loc), "2024-03-09"},
		{"fall back before cutoff", time.Date(2024, 11, 3, 5, 30, 0, 0, loc), "2024-11-02"},
		{"fall back at cutoff", time.Date(2024, 11, 3, 6, 0, 0, 0, loc), "2024-11-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.Key(tt.at); got != tt.want {
				t.Errorf("Key(%v) = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	loc := newYork(t)
	cal := New(loc, 6)

	start, end, err := cal.Bounds("2024-06-08")
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if !start.Equal(time.Date(2024, 6, 8, 6, 0, 0, 0, loc)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2024, 6, 9, 6, 0, 0, 0, loc)) {
		t.Errorf("end = %v", end)
	}
	if cal.Key(start) != "2024-06-08" || cal.Key(end.Add(-time.Nanosecond)) != "2024-06-08" {
		t.Error("bounds do not map back to the same key")
	}

	for _, key := range []string{"2024-03-10", "2024-11-03"} {
		start, end, err := cal.Bounds(key)
		if err != nil {
			t.Fatalf("Bounds(%s) failed: %v", key, err)
		}
		if start.Hour() != 6 || end.Hour() != 6 {
			t.Errorf("Bounds(%s) = [%v, %v), want 06:00 local on both ends", key, start, end)
		}
		if cal.Key(start) != key || cal.Key(end.Add(-time.Nanosecond)) != key {
			t.Errorf("Bounds(%s) do not map back to the same key", key)
		}
	}

	if _, _, err := cal.Bounds("June 8"); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestAddDaysAndRange(t *testing.T) {
	got, err := AddDays("2024-02-28", 1)
	if err != nil {
		t.Fatalf("AddDays failed: %v", err)
	}
	if got != "2024-02-29" {
		t.Errorf("AddDays = %s, want 2024-02-29", got)
	}

	got, _ = AddDays("2024-03-01", -89)
	if got != "2023-12-03" {
		t.Errorf("AddDays(-89) = %s, want 2023-12-03", got)
	}

	keys, err := Range("2024-12-30", "2025-01-02")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	want := []string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02"}
	if len(keys) != len(want) {
		t.Fatalf("Range returned %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %s, want %s", i, keys[i], want[i])
		}
	}

	if Valid("2024-13-01") {
		t.Error("expected month 13 to be invalid")
	}
	if !Valid("2024-06-08") {
		t.Error("expected 2024-06-08 to be valid")
	}
}
