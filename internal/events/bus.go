// Package events carries accepted grant activity from the award path to
// in-process consumers (currently the activity feed).
package events

import "github.com/Abtechguru/veritusblogs-engagement/internal/model"

// Bus is a lightweight in-process pub-sub implementation backed by a
// buffered channel. The feed tolerates drops: it can always re-warm from
// the ledger, so Publish never blocks the award path.
type Bus struct {
	ch chan model.ActivityRecord
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan model.ActivityRecord, buffer)}
}

// Publish attempts to enqueue the record without blocking.
// Returns true if published, false if the buffer is full.
func (b *Bus) Publish(rec model.ActivityRecord) bool {
	select {
	case b.ch <- rec:
		return true
	default:
		return false
	}
}

// Subscribe returns a read-only channel for consumers.
func (b *Bus) Subscribe() <-chan model.ActivityRecord {
	return b.ch
}
