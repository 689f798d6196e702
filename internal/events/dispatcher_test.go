package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	var seen []string
	d.Subscribe(EventVehicleApproved, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.ResourceID)
		return boom
	})
	d.Subscribe(EventVehicleApproved, func(_ context.Context, e Event) error {
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Errorf("event not stamped: %+v", e)
		}
		seen = append(seen, "second:"+e.ResourceID)
		return nil
	})
	d.Subscribe(EventVehicleRejected, func(context.Context, Event) error {
		t.Error("handler for other type invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventVehicleApproved, ResourceID: "v1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(seen) != 2 || seen[0] != "first:v1" || seen[1] != "second:v1" {
		t.Fatalf("unexpected handler calls %v", seen)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	if err := d.Publish(context.Background(), Event{Type: EventSlotReleased}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
