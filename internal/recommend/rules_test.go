package recommend

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
)

type fakeActiveSource struct {
	events []*models.Event
	err    error
}

func (f *fakeActiveSource) ListAllActiveEvents(ctx context.Context) ([]*models.Event, error) {
	return f.events, f.err
}

// newestFirst builds a corpus already ordered created_at descending,
// the way the backend query returns it.
func newestFirst(n int) []*models.Event {
	now := time.Now()
	events := make([]*models.Event, n)
	for i := range events {
		events[i] = &models.Event{
			ID:        uuid.New(),
			Title:     "event",
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
			EndTime:   now.Add(24 * time.Hour),
		}
	}
	return events
}

func idSet(events []*models.Event) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(events))
	for _, e := range events {
		set[e.ID] = true
	}
	return set
}

func TestSelectDrawsFromNewestHalf(t *testing.T) {
	corpus := newestFirst(10)
	rb := NewRuleBased(&fakeActiveSource{events: corpus}, rand.New(rand.NewSource(1)), testLogger())

	selected, err := rb.Select(context.Background(), nil, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 5 {
		t.Fatalf("got %d events, want the newest half (5)", len(selected))
	}

	newest := idSet(corpus[:5])
	for _, event := range selected {
		if !newest[event.ID] {
			t.Fatalf("event %s is not in the newest half", event.ID)
		}
	}
}

func TestSelectCeilingHalfOnOddCorpus(t *testing.T) {
	rb := NewRuleBased(&fakeActiveSource{events: newestFirst(7)}, rand.New(rand.NewSource(1)), testLogger())

	selected, err := rb.Select(context.Background(), nil, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 4 {
		t.Fatalf("got %d events, want ceil(7/2)=4", len(selected))
	}
}

func TestSelectStableSetAcrossCalls(t *testing.T) {
	corpus := newestFirst(12)
	rb := NewRuleBased(&fakeActiveSource{events: corpus}, rand.New(rand.NewSource(42)), testLogger())

	first, err := rb.Select(context.Background(), nil, 12, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := rb.Select(context.Background(), nil, 12, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Order may differ between calls; the candidate set may not.
	firstSet, secondSet := idSet(first), idSet(second)
	if len(firstSet) != len(secondSet) {
		t.Fatalf("set sizes differ: %d vs %d", len(firstSet), len(secondSet))
	}
	for id := range firstSet {
		if !secondSet[id] {
			t.Fatalf("event %s missing from second selection", id)
		}
	}
}

func TestSelectExcludesAndWindows(t *testing.T) {
	corpus := newestFirst(10)
	rb := NewRuleBased(&fakeActiveSource{events: corpus}, rand.New(rand.NewSource(7)), testLogger())

	exclude := []uuid.UUID{corpus[0].ID, corpus[1].ID}
	selected, err := rb.Select(context.Background(), exclude, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, event := range selected {
		if event.ID == exclude[0] || event.ID == exclude[1] {
			t.Fatalf("excluded event %s was returned", event.ID)
		}
	}

	windowed, err := rb.Select(context.Background(), nil, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(windowed) != 2 {
		t.Fatalf("got %d events, want window of 2", len(windowed))
	}

	past, err := rb.Select(context.Background(), nil, 5, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(past) != 0 {
		t.Fatalf("offset past the candidate set should yield nothing, got %d", len(past))
	}
}

func TestSelectEmptyCorpus(t *testing.T) {
	rb := NewRuleBased(&fakeActiveSource{}, nil, testLogger())
	selected, err := rb.Select(context.Background(), nil, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 0 {
		t.Fatalf("expected empty selection, got %d", len(selected))
	}
}
