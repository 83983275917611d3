// Package feed maintains the bounded, newest-first window of recent
// grant activity served on the public activities endpoint.
package feed

import (
	"context"
	"sync"

	"github.com/Abtechguru/veritusblogs-engagement/internal/events"
	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
)

// Feed is an in-memory ring of the most recent ActivityRecords.
// Appends evict the oldest entry once capacity is reached; past entries
// are never mutated.
type Feed struct {
	mu       sync.RWMutex
	recs     []model.ActivityRecord // newest first
	capacity int
}

// New creates a feed retaining at most capacity records.
func New(capacity int) *Feed {
	if capacity <= 0 {
		capacity = 1
	}
	return &Feed{capacity: capacity}
}

// Warm seeds the feed from storage. recs must be newest first, as
// returned by Events.ListRecent.
func (f *Feed) Warm(recs []*model.ActivityRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = f.recs[:0]
	for _, r := range recs {
		if len(f.recs) == f.capacity {
			break
		}
		f.recs = append(f.recs, *r)
	}
}

// Append prepends a record, evicting the oldest when full.
func (f *Feed) Append(rec model.ActivityRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.recs) == f.capacity {
		f.recs = f.recs[:len(f.recs)-1]
	}
	f.recs = append([]model.ActivityRecord{rec}, f.recs...)
}

// Recent returns up to limit records, newest first. A limit beyond the
// retained window returns everything available.
func (f *Feed) Recent(limit int) []model.ActivityRecord {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if limit <= 0 || limit > len(f.recs) {
		limit = len(f.recs)
	}
	out := make([]model.ActivityRecord, limit)
	copy(out, f.recs[:limit])
	return out
}

// Capacity reports the maximum number of retained records.
func (f *Feed) Capacity() int { return f.capacity }

// Len reports the number of retained records.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.recs)
}

// Run consumes the bus until ctx is cancelled.
func (f *Feed) Run(ctx context.Context, bus *events.Bus) {
	ch := bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-ch:
			f.Append(rec)
		}
	}
}
