package events

import (
	"testing"

	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
)

func TestPublishSubscribe(t *testing.T) {
	b := NewBus(2)
	if !b.Publish(model.ActivityRecord{ID: "e1"}) {
		t.Fatal("publish into empty buffer failed")
	}
	if !b.Publish(model.ActivityRecord{ID: "e2"}) {
		t.Fatal("publish into half-full buffer failed")
	}
	// Buffer full: publish must not block, just report the drop.
	if b.Publish(model.ActivityRecord{ID: "e3"}) {
		t.Fatal("publish into full buffer should return false")
	}
	if got := <-b.Subscribe(); got.ID != "e1" {
		t.Fatalf("first record = %s, want e1", got.ID)
	}
}
