package recommend

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
)

type ActiveEventSource interface {
	ListAllActiveEvents(ctx context.Context) ([]*models.Event, error)
}

// RuleBased is the deterministic-policy fallback recommender: it
// biases toward newer content by keeping the newest half of the active
// corpus, then shuffles that half so repeat visitors still see
// variety. The shuffle is re-rolled per call, so ordering is
// intentionally unstable while the candidate set is not.
type RuleBased struct {
	events ActiveEventSource
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRuleBased builds the recommender. A nil rng gets a time-seeded
// source; tests pass a seeded one.
func NewRuleBased(events ActiveEventSource, rng *rand.Rand, logger *slog.Logger) *RuleBased {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RuleBased{events: events, rng: rng, logger: logger}
}

// Select returns a page of recommendations drawn from the shuffled
// newest half of the active corpus, minus the excluded ids.
func (rb *RuleBased) Select(ctx context.Context, exclude []uuid.UUID, limit, offset int) ([]*models.Event, error) {
	all, err := rb.events.ListAllActiveEvents(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	// Newest half, ceiling. The corpus arrives created_at descending.
	half := (len(all) + 1) / 2
	candidates := make([]*models.Event, half)
	copy(candidates, all[:half])

	rb.mu.Lock()
	rb.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	rb.mu.Unlock()

	if len(exclude) > 0 {
		excluded := make(map[uuid.UUID]bool, len(exclude))
		for _, id := range exclude {
			excluded[id] = true
		}
		kept := candidates[:0]
		for _, event := range candidates {
			if !excluded[event.ID] {
				kept = append(kept, event)
			}
		}
		candidates = kept
	}

	if offset >= len(candidates) {
		return nil, nil
	}
	end := offset + limit
	if end > len(candidates) {
		end = len(candidates)
	}
	return candidates[offset:end], nil
}
