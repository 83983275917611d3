package xp

import "testing"

func TestLevelFromXPBoundaries(t *testing.T) {
	cases := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{999, 4},
		{1000, 5},
		{1999, 5},
		{2000, 6},
		{3499, 6},
		{3500, 7},
		{5499, 7},
		{5500, 8},
		{7999, 8},
		{8000, 9},
		{11999, 9},
		{12000, 10},
		{1_000_000, 10},
	}
	for _, c := range cases {
		if got := LevelFromXP(c.xp); got != c.want {
			t.Fatalf("LevelFromXP(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestLevelFromXPMonotonic(t *testing.T) {
	prev := 0
	for xp := int64(0); xp <= 13000; xp += 7 {
		lvl := LevelFromXP(xp)
		if lvl < prev {
			t.Fatalf("level decreased at xp=%d: %d -> %d", xp, prev, lvl)
		}
		if lvl > MaxLevel {
			t.Fatalf("level exceeds max at xp=%d: %d", xp, lvl)
		}
		prev = lvl
	}
}
