package xp

import (
	"testing"
	"time"
)

func TestWeekAnchorIsMondayUTC(t *testing.T) {
	// 2026-08-31 is a Monday.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		ts := monday.AddDate(0, 0, d).Add(13*time.Hour + 37*time.Minute)
		got := WeekAnchor(ts)
		if !got.Equal(monday) {
			t.Fatalf("WeekAnchor(%v) = %v, want %v", ts, got, monday)
		}
		if got.Weekday() != time.Monday {
			t.Fatalf("anchor %v is not a Monday", got)
		}
	}
}

func TestWeekAnchorIdempotent(t *testing.T) {
	ts := time.Date(2026, 9, 3, 8, 0, 0, 0, time.UTC)
	a := WeekAnchor(ts)
	if !WeekAnchor(a).Equal(a) {
		t.Fatalf("WeekAnchor not idempotent: %v -> %v", a, WeekAnchor(a))
	}
}

func TestWeekAnchorSundayEdge(t *testing.T) {
	// Sunday 23:59 belongs to the week that started six days earlier.
	sunday := time.Date(2026, 9, 6, 23, 59, 59, 0, time.UTC)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if got := WeekAnchor(sunday); !got.Equal(want) {
		t.Fatalf("WeekAnchor(%v) = %v, want %v", sunday, got, want)
	}
	// One second later a new week begins.
	next := WeekAnchor(sunday.Add(time.Second))
	if !next.Equal(want.AddDate(0, 0, 7)) {
		t.Fatalf("next anchor = %v, want %v", next, want.AddDate(0, 0, 7))
	}
}

func TestInWeek(t *testing.T) {
	anchor := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !InWeek(anchor, anchor) {
		t.Fatal("anchor itself must be inside the week")
	}
	if InWeek(anchor, anchor.Add(-time.Second)) {
		t.Fatal("instant before anchor must be outside the week")
	}
	if InWeek(anchor, anchor.AddDate(0, 0, 7)) {
		t.Fatal("next anchor must be outside the week")
	}
}
