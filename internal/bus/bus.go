// Package bus provides the change-notification capability dependent
// views subscribe to. Core services publish a Change after every
// successful write so derived reads (attendee counts, bookmark lists,
// cached map data) can refresh without polling.
package bus

import (
	"sync"

	"github.com/google/uuid"
)

// Change describes one committed mutation on a backend table.
type Change struct {
	Table   string
	EventID uuid.UUID
	UserID  uuid.UUID
	Kind    string // e.g. "upsert", "delete"
	Detail  string // table-specific qualifier, e.g. the interaction type
}

type subscriber struct {
	id        int
	table     string
	predicate func(Change) bool
	fn        func(Change)
}

// ChangeBus fans committed changes out to subscribers. Delivery is
// synchronous and in subscription order; callbacks must not block.
type ChangeBus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

func New() *ChangeBus {
	return &ChangeBus{}
}

// Subscribe registers fn for changes on table that match predicate.
// A nil predicate matches every change on the table. The returned
// function unsubscribes and is safe to call more than once.
func (b *ChangeBus) Subscribe(table string, predicate func(Change) bool, fn func(Change)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, table: table, predicate: predicate, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *ChangeBus) Publish(change Change) {
	b.mu.RLock()
	// Snapshot so a callback can unsubscribe without deadlocking.
	matched := make([]func(Change), 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.table != change.Table {
			continue
		}
		if sub.predicate != nil && !sub.predicate(change) {
			continue
		}
		matched = append(matched, sub.fn)
	}
	b.mu.RUnlock()

	for _, fn := range matched {
		fn(change)
	}
}
