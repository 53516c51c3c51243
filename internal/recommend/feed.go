package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
)

// PageSize is the fixed feed page length.
const PageSize = 20

type FeedEventStore interface {
	ListActiveEventsByIDs(ctx context.Context, ids []uuid.UUID, offset, limit int) ([]*models.Event, error)
	ListActiveEventsExcluding(ctx context.Context, exclude []uuid.UUID, limit int) ([]*models.Event, error)
}

type Ranker interface {
	Rank(ctx context.Context, userID uuid.UUID) []string
}

type Recommender interface {
	FetchRecommendations(ctx context.Context, userID uuid.UUID, preferences []string, limit int) []Recommendation
}

type FallbackSelector interface {
	Select(ctx context.Context, exclude []uuid.UUID, limit, offset int) ([]*models.Event, error)
}

// Assembler builds the personalized "For You" page: ML-selected events
// first, then rule-based top-up, then a popularity top-up when the
// corpus runs short. No event id appears twice.
type Assembler struct {
	events   FeedEventStore
	ranker   Ranker
	gateway  Recommender
	fallback FallbackSelector
	logger   *slog.Logger
}

func NewAssembler(events FeedEventStore, ranker Ranker, gateway Recommender, fallback FallbackSelector, logger *slog.Logger) *Assembler {
	return &Assembler{
		events:   events,
		ranker:   ranker,
		gateway:  gateway,
		fallback: fallback,
		logger:   logger,
	}
}

// ForYou assembles one feed page. Personalization failures (ML
// timeout, malformed result, hydration errors) recover locally via the
// rule-based fallback; only storage failures on the fallback and final
// top-up queries reach the caller.
func (a *Assembler) ForYou(ctx context.Context, userID uuid.UUID, page int) ([]*models.Event, error) {
	if page < 1 {
		page = 1
	}
	limit := PageSize
	offset := (page - 1) * limit

	preferences := a.ranker.Rank(ctx, userID)
	recommendations := a.gateway.FetchRecommendations(ctx, userID, preferences, limit)

	var feed []*models.Event
	seen := make(map[uuid.UUID]bool)

	if len(recommendations) > 0 {
		hydrated, err := a.hydrate(ctx, recommendations, offset, limit)
		if err != nil {
			a.logger.Warn("ml hydration failed, using rule-based feed", "user_id", userID, "error", err)
		} else {
			feed = appendUnique(feed, hydrated, seen)
		}
	}

	if len(recommendations) == 0 || len(feed) == 0 {
		// ML unavailable (or hydration produced nothing): rule-based
		// selection is the sole page source.
		selected, err := a.fallback.Select(ctx, nil, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to load events: %v", err)
		}
		feed = appendUnique(feed, selected, seen)
	} else if len(feed) < limit {
		// Short ML page: rule-based top-up excluding what we have.
		selected, err := a.fallback.Select(ctx, keys(seen), limit-len(feed), 0)
		if err != nil {
			a.logger.Warn("rule-based top-up failed", "user_id", userID, "error", err)
		} else {
			feed = appendUnique(feed, selected, seen)
		}
	}

	// Both branches: popularity top-up for corpus exhaustion.
	if len(feed) < limit {
		popular, err := a.events.ListActiveEventsExcluding(ctx, keys(seen), limit-len(feed))
		if err != nil {
			if len(feed) == 0 {
				return nil, fmt.Errorf("failed to load events: %v", err)
			}
			a.logger.Warn("popularity top-up failed, returning short page", "user_id", userID, "error", err)
			return feed, nil
		}
		feed = appendUnique(feed, popular, seen)
	}

	return feed, nil
}

// hydrate turns the validated ML ids into full event rows, restoring
// the model's score order (the backend returns rows in its own order).
func (a *Assembler) hydrate(ctx context.Context, recommendations []Recommendation, offset, limit int) ([]*models.Event, error) {
	ids := make([]uuid.UUID, 0, len(recommendations))
	position := make(map[uuid.UUID]int, len(recommendations))
	for i, rec := range recommendations {
		ids = append(ids, rec.EventID)
		position[rec.EventID] = i
	}

	events, err := a.events.ListActiveEventsByIDs(ctx, ids, offset, limit)
	if err != nil {
		return nil, err
	}

	ordered := make([]*models.Event, len(events))
	copy(ordered, events)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && position[ordered[j].ID] < position[ordered[j-1].ID]; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered, nil
}

func appendUnique(feed, candidates []*models.Event, seen map[uuid.UUID]bool) []*models.Event {
	for _, event := range candidates {
		if event == nil || seen[event.ID] {
			continue
		}
		seen[event.ID] = true
		feed = append(feed, event)
	}
	return feed
}

func keys(seen map[uuid.UUID]bool) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}
