package recommend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserStore struct {
	user *models.User
	err  error
}

func (f *fakeUserStore) GetUser(ctx context.Context, id uuid.UUID, accessToken string) (*models.User, error) {
	return f.user, f.err
}

type fakeInteractionStore struct {
	interactions []models.Interaction
	err          error
}

func (f *fakeInteractionStore) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Interaction, error) {
	return f.interactions, f.err
}

type fakeCategoryStore struct {
	categories []string
	err        error
}

func (f *fakeCategoryStore) ListCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	return f.categories, f.err
}

func interactionsOf(n int) []models.Interaction {
	out := make([]models.Interaction, n)
	for i := range out {
		out[i] = models.Interaction{UserID: uuid.New(), EventID: uuid.New(), Type: models.InteractionView}
	}
	return out
}

func TestRankExplicitBeforeImplicit(t *testing.T) {
	pa := NewPreferenceAggregator(
		&fakeUserStore{user: &models.User{Preferences: []string{"Music"}}},
		&fakeInteractionStore{interactions: interactionsOf(3)},
		&fakeCategoryStore{categories: []string{"Food", "Food", "Music"}},
		testLogger(),
	)

	got := pa.Rank(context.Background(), uuid.New())
	want := []string{"Music", "Food"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}
}

func TestRankFrequencyOrderWithTies(t *testing.T) {
	pa := NewPreferenceAggregator(
		&fakeUserStore{user: &models.User{}},
		&fakeInteractionStore{interactions: interactionsOf(5)},
		// Club and Study tie at 1; Club was observed first.
		&fakeCategoryStore{categories: []string{"Club", "Food", "Study", "Food", "Food"}},
		testLogger(),
	)

	got := pa.Rank(context.Background(), uuid.New())
	want := []string{"Food", "Club", "Study"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}
}

func TestRankAbsentDataYieldsEmptyRanking(t *testing.T) {
	pa := NewPreferenceAggregator(
		&fakeUserStore{err: fmt.Errorf("not found")},
		&fakeInteractionStore{},
		&fakeCategoryStore{},
		testLogger(),
	)

	if got := pa.Rank(context.Background(), uuid.New()); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", got)
	}
}
