// Package cache holds the constructed TTL cache that backs the map
// event listing. It is owned by the event service, not a process-wide
// global, and takes its clock by injection so expiry is testable.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/locallore/server/internal/models"
)

const (
	// EventTTL bounds how stale listed event data may get.
	EventTTL = 2 * time.Minute
	// SessionTTL bounds session-scoped map state (markers, viewport).
	SessionTTL = 30 * time.Minute
)

// Bounds is a map viewport. The zero value keys the default view.
type Bounds struct {
	SouthWestLng float64
	SouthWestLat float64
	NorthEastLng float64
	NorthEastLat float64
}

func (b Bounds) key() string {
	if b == (Bounds{}) {
		return "map_default"
	}
	return fmt.Sprintf("map_%v_%v_%v_%v", b.SouthWestLng, b.SouthWestLat, b.NorthEastLng, b.NorthEastLat)
}

type entry struct {
	events      []*models.Event
	lastFetched time.Time
}

type EventCache struct {
	mu         sync.Mutex
	now        func() time.Time
	eventTTL   time.Duration
	sessionTTL time.Duration
	entries    map[string]entry
}

// New builds a cache around the given clock. A nil clock falls back to
// time.Now.
func New(now func() time.Time) *EventCache {
	if now == nil {
		now = time.Now
	}
	return &EventCache{
		now:        now,
		eventTTL:   EventTTL,
		sessionTTL: SessionTTL,
		entries:    make(map[string]entry),
	}
}

// Get returns the cached events for the viewport, or nil when absent
// or expired. Session-scoped reads tolerate the longer TTL.
func (c *EventCache) Get(bounds Bounds, session bool) []*models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.entries[bounds.key()]
	if !ok {
		return nil
	}

	maxAge := c.eventTTL
	if session {
		maxAge = c.sessionTTL
	}
	if c.now().Sub(cached.lastFetched) >= maxAge {
		return nil
	}
	return cached.events
}

func (c *EventCache) Set(bounds Bounds, events []*models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[bounds.key()] = entry{events: events, lastFetched: c.now()}
}

// Invalidate drops every viewport entry. Called when the change bus
// reports a write on the events table.
func (c *EventCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Cleanup removes entries past the session TTL.
func (c *EventCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, cached := range c.entries {
		if c.now().Sub(cached.lastFetched) >= c.sessionTTL {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
