package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
)

func rec(i int) model.ActivityRecord {
	return model.ActivityRecord{
		ID:         fmt.Sprintf("e%d", i),
		UserID:     "u1",
		Kind:       "comment",
		XPEarned:   10,
		OccurredAt: time.Unix(int64(i), 0).UTC(),
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	f := New(3)
	for i := 1; i <= 5; i++ {
		f.Append(rec(i))
	}
	got := f.Recent(10)
	if len(got) != 3 {
		t.Fatalf("retained %d records, want 3", len(got))
	}
	for i, want := range []string{"e5", "e4", "e3"} {
		if got[i].ID != want {
			t.Fatalf("pos %d = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestRecentLimit(t *testing.T) {
	f := New(5)
	for i := 1; i <= 4; i++ {
		f.Append(rec(i))
	}
	if got := f.Recent(2); len(got) != 2 || got[0].ID != "e4" {
		t.Fatalf("Recent(2) = %v", got)
	}
	// A limit beyond the window returns everything without error.
	if got := f.Recent(100); len(got) != 4 {
		t.Fatalf("Recent(100) size = %d, want 4", len(got))
	}
	if got := f.Recent(0); len(got) != 4 {
		t.Fatalf("Recent(0) size = %d, want 4", len(got))
	}
}

func TestWarmNewestFirst(t *testing.T) {
	f := New(2)
	r3, r2, r1 := rec(3), rec(2), rec(1)
	f.Warm([]*model.ActivityRecord{&r3, &r2, &r1})
	got := f.Recent(10)
	if len(got) != 2 || got[0].ID != "e3" || got[1].ID != "e2" {
		t.Fatalf("Warm kept wrong window: %v", got)
	}
}
