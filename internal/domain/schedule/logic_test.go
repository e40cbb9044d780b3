package schedule

import (
	"testing"
	"time"
)

func TestOppositeShiftName(t *testing.T) {
	opposite, ok := OppositeShiftName("AM")
	if !ok || opposite != "PM" {
		t.Fatalf("expected PM, got %q ok=%v", opposite, ok)
	}
	opposite, ok = OppositeShiftName("PM")
	if !ok || opposite != "AM" {
		t.Fatalf("expected AM, got %q ok=%v", opposite, ok)
	}
	if _, ok := OppositeShiftName("NIGHT"); ok {
		t.Fatal("unmapped shift should have no opposite")
	}
	if _, ok := OppositeShiftName(""); ok {
		t.Fatal("empty shift should have no opposite")
	}
}

func TestWeekdayHelpers(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	if !IsSunday(sunday) || IsSunday(saturday) || IsSunday(monday) {
		t.Fatal("IsSunday mismatch")
	}
	if !IsWeekend(saturday) || !IsWeekend(sunday) || IsWeekend(monday) {
		t.Fatal("IsWeekend mismatch")
	}
}

func TestDateOnly(t *testing.T) {
	stamp := time.Date(2026, 5, 4, 17, 30, 12, 0, time.FixedZone("X", 3600))
	got := DateOnly(stamp)
	want := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEndOfYear(t *testing.T) {
	start := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	got := EndOfYear(start)
	if got.Year() != 2026 || got.Month() != time.December || got.Day() != 31 {
		t.Fatalf("expected 2026-12-31, got %v", got)
	}
}
