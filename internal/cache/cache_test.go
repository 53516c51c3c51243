package cache

import (
	"testing"
	"time"

	"github.com/locallore/server/internal/models"
)

func TestGetRespectsEventTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(clock)

	events := []*models.Event{{Title: "Free Pizza"}}
	c.Set(Bounds{}, events)

	if got := c.Get(Bounds{}, false); len(got) != 1 {
		t.Fatalf("expected fresh entry, got %v", got)
	}

	now = now.Add(EventTTL + time.Second)
	if got := c.Get(Bounds{}, false); got != nil {
		t.Fatal("expected expired entry after event TTL")
	}

	// The same entry is still valid for session-scoped reads.
	if got := c.Get(Bounds{}, true); len(got) != 1 {
		t.Fatal("expected entry alive under session TTL")
	}

	now = now.Add(SessionTTL)
	if got := c.Get(Bounds{}, true); got != nil {
		t.Fatal("expected expired entry after session TTL")
	}
}

func TestBoundsKeyIsolation(t *testing.T) {
	c := New(nil)

	a := Bounds{SouthWestLng: -87.1, SouthWestLat: 40.4, NorthEastLng: -86.9, NorthEastLat: 40.5}
	c.Set(a, []*models.Event{{Title: "A"}})

	if got := c.Get(Bounds{}, false); got != nil {
		t.Fatal("default viewport should not see another viewport's entry")
	}
	if got := c.Get(a, false); len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("expected viewport entry, got %v", got)
	}
}

func TestInvalidateAndCleanup(t *testing.T) {
	now := time.Now()
	c := New(func() time.Time { return now })

	c.Set(Bounds{}, []*models.Event{{Title: "A"}})
	c.Invalidate()
	if got := c.Get(Bounds{}, true); got != nil {
		t.Fatal("expected empty cache after invalidate")
	}

	c.Set(Bounds{}, []*models.Event{{Title: "B"}})
	now = now.Add(SessionTTL + time.Minute)
	if removed := c.Cleanup(); removed != 1 {
		t.Fatalf("expected 1 removed entry, got %d", removed)
	}
}
