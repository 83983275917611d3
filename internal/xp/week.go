package xp

import "time"

// WeekAnchor returns the start of the scoring week containing t:
// Monday 00:00 UTC. The anchor is global, not per-user, so every
// account resets on the same boundary.
func WeekAnchor(t time.Time) time.Time {
	t = t.UTC()
	// Monday = 0 ... Sunday = 6
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// InWeek reports whether ts falls inside the week starting at anchor.
func InWeek(anchor, ts time.Time) bool {
	ts = ts.UTC()
	return !ts.Before(anchor) && ts.Before(anchor.AddDate(0, 0, 7))
}
