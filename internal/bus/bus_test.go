package bus

import (
	"testing"

	"github.com/google/uuid"
)

func TestPublishRoutesByTableAndPredicate(t *testing.T) {
	b := New()
	target := uuid.New()
	other := uuid.New()

	var got []Change
	b.Subscribe("user_event_interactions", func(c Change) bool {
		return c.EventID == target
	}, func(c Change) {
		got = append(got, c)
	})

	var eventsTable int
	b.Subscribe("events", nil, func(c Change) {
		eventsTable++
	})

	b.Publish(Change{Table: "user_event_interactions", EventID: target, Kind: "upsert"})
	b.Publish(Change{Table: "user_event_interactions", EventID: other, Kind: "upsert"})
	b.Publish(Change{Table: "events", EventID: target, Kind: "delete"})

	if len(got) != 1 || got[0].EventID != target {
		t.Fatalf("predicate subscriber got %d changes, want 1 for target event", len(got))
	}
	if eventsTable != 1 {
		t.Fatalf("events subscriber got %d changes, want 1", eventsTable)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	var calls int
	unsub := b.Subscribe("events", nil, func(Change) { calls++ })

	b.Publish(Change{Table: "events"})
	unsub()
	unsub() // second call is a no-op
	b.Publish(Change{Table: "events"})

	if calls != 1 {
		t.Fatalf("got %d calls after unsubscribe, want 1", calls)
	}
}

func TestSubscriberCanUnsubscribeDuringPublish(t *testing.T) {
	b := New()

	var unsub func()
	calls := 0
	unsub = b.Subscribe("events", nil, func(Change) {
		calls++
		unsub()
	})

	b.Publish(Change{Table: "events"})
	b.Publish(Change{Table: "events"})

	if calls != 1 {
		t.Fatalf("got %d calls, want 1", calls)
	}
}
