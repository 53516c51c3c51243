// Package recommend holds the discovery pipeline: the preference
// aggregator, the rule-based fallback recommender, the ML service
// gateway and the feed assembler that blends them.
package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
)

// recentInteractionWindow is how many of the user's latest
// interactions feed the implicit preference signal.
const recentInteractionWindow = 50

type PreferenceUserStore interface {
	GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*models.User, error)
}

type PreferenceInteractionStore interface {
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Interaction, error)
}

type PreferenceCategoryStore interface {
	ListCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
}

// PreferenceAggregator derives a ranked category list per user from
// explicit profile preferences and implicit interaction history.
type PreferenceAggregator struct {
	users        PreferenceUserStore
	interactions PreferenceInteractionStore
	events       PreferenceCategoryStore
	logger       *slog.Logger
}

func NewPreferenceAggregator(users PreferenceUserStore, interactions PreferenceInteractionStore, events PreferenceCategoryStore, logger *slog.Logger) *PreferenceAggregator {
	return &PreferenceAggregator{
		users:        users,
		interactions: interactions,
		events:       events,
		logger:       logger,
	}
}

// Rank builds the ordered preference hint: explicit preferences in
// their stored order, then interaction categories sorted by descending
// frequency, deduplicated keeping first occurrence. Missing data
// degrades to an empty ranking; Rank never fails.
func (pa *PreferenceAggregator) Rank(ctx context.Context, userID uuid.UUID) []string {
	var explicit []string
	user, err := pa.users.GetUser(ctx, userID, "")
	if err != nil {
		pa.logger.Debug("preference lookup failed, continuing without explicit preferences",
			"user_id", userID, "error", err)
	} else if user != nil {
		explicit = user.Preferences
	}

	implicit := pa.interactionCategories(ctx, userID)

	ranked := make([]string, 0, len(explicit)+len(implicit))
	seen := make(map[string]bool, len(explicit)+len(implicit))
	for _, category := range append(append([]string{}, explicit...), implicit...) {
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		ranked = append(ranked, category)
	}
	return ranked
}

func (pa *PreferenceAggregator) interactionCategories(ctx context.Context, userID uuid.UUID) []string {
	interactions, err := pa.interactions.ListRecentByUser(ctx, userID, recentInteractionWindow)
	if err != nil {
		pa.logger.Debug("interaction history lookup failed", "user_id", userID, "error", err)
		return nil
	}
	if len(interactions) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(interactions))
	for _, interaction := range interactions {
		ids = append(ids, interaction.EventID)
	}

	categories, err := pa.events.ListCategoriesByIDs(ctx, ids)
	if err != nil {
		pa.logger.Debug("interacted-event category lookup failed", "user_id", userID, "error", err)
		return nil
	}

	counts := make(map[string]int, len(categories))
	firstSeen := make(map[string]int, len(categories))
	order := make([]string, 0, len(categories))
	for i, category := range categories {
		if category == "" {
			continue
		}
		if _, ok := counts[category]; !ok {
			firstSeen[category] = i
			order = append(order, category)
		}
		counts[category]++
	}

	// Frequency descending, ties by first observation.
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})
	return order
}
