package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/bus"
	"github.com/locallore/server/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeInteractionsRepo struct {
	models.InteractionsRepo
	upserts   []models.Interaction
	deletes   []models.Interaction
	upsertErr error
	deleteErr error
}

func (f *fakeInteractionsRepo) UpsertInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType models.InteractionType, accessToken string) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, models.Interaction{UserID: userID, EventID: eventID, Type: interactionType})
	return nil
}

func (f *fakeInteractionsRepo) DeleteInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType models.InteractionType, accessToken string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, models.Interaction{UserID: userID, EventID: eventID, Type: interactionType})
	return nil
}

type fakeEventsRepo struct {
	models.EventsRepo
	incremented []uuid.UUID
	incErr      error
}

func (f *fakeEventsRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if f.incErr != nil {
		return f.incErr
	}
	f.incremented = append(f.incremented, id)
	return nil
}

func TestRecordViewBumpsCounter(t *testing.T) {
	interactions := &fakeInteractionsRepo{}
	events := &fakeEventsRepo{}
	service := NewInteractionService(interactions, events, bus.New(), testLogger())

	userID, eventID := uuid.New(), uuid.New()
	if err := service.Record(context.Background(), userID, eventID, "view", "token"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(interactions.upserts) != 1 {
		t.Fatalf("got %d upserts, want 1", len(interactions.upserts))
	}
	if len(events.incremented) != 1 || events.incremented[0] != eventID {
		t.Fatalf("view counter not bumped for %s", eventID)
	}
}

func TestRecordViewCounterFailureIsNotFatal(t *testing.T) {
	interactions := &fakeInteractionsRepo{}
	events := &fakeEventsRepo{incErr: errors.New("rpc unavailable")}
	service := NewInteractionService(interactions, events, bus.New(), testLogger())

	if err := service.Record(context.Background(), uuid.New(), uuid.New(), "view", "token"); err != nil {
		t.Fatalf("counter failure should not fail the record: %v", err)
	}
	if len(interactions.upserts) != 1 {
		t.Fatal("interaction row should still be written")
	}
}

func TestRecordViewCounterRunsWhenUpsertFails(t *testing.T) {
	interactions := &fakeInteractionsRepo{upsertErr: errors.New("db down")}
	events := &fakeEventsRepo{}
	service := NewInteractionService(interactions, events, bus.New(), testLogger())

	if err := service.Record(context.Background(), uuid.New(), uuid.New(), "view", "token"); err == nil {
		t.Fatal("expected the upsert error to surface")
	}
	if len(events.incremented) != 1 {
		t.Fatal("view counter should be bumped independently of the row write")
	}
}

func TestRecordRejectsUnknownType(t *testing.T) {
	interactions := &fakeInteractionsRepo{}
	events := &fakeEventsRepo{}
	service := NewInteractionService(interactions, events, bus.New(), testLogger())

	err := service.Record(context.Background(), uuid.New(), uuid.New(), "like", "token")
	if !errors.Is(err, models.ErrInvalidInteractionType) {
		t.Fatalf("err = %v, want ErrInvalidInteractionType", err)
	}
	if len(interactions.upserts) != 0 || len(events.incremented) != 0 {
		t.Fatal("invalid type must be rejected before any side effect")
	}
}

func TestRecordRequiresUser(t *testing.T) {
	service := NewInteractionService(&fakeInteractionsRepo{}, &fakeEventsRepo{}, bus.New(), testLogger())

	err := service.Record(context.Background(), uuid.Nil, uuid.New(), "bookmark", "")
	if !errors.Is(err, models.ErrAuthenticationRequired) {
		t.Fatalf("err = %v, want ErrAuthenticationRequired", err)
	}
}

func TestRecordPublishesChange(t *testing.T) {
	changes := bus.New()
	service := NewInteractionService(&fakeInteractionsRepo{}, &fakeEventsRepo{}, changes, testLogger())

	var got []bus.Change
	changes.Subscribe(models.InteractionsTable, nil, func(change bus.Change) {
		got = append(got, change)
	})

	userID, eventID := uuid.New(), uuid.New()
	if err := service.Record(context.Background(), userID, eventID, "bookmark", "token"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d changes, want 1", len(got))
	}
	if got[0].UserID != userID || got[0].EventID != eventID || got[0].Kind != "upsert" || got[0].Detail != "bookmark" {
		t.Fatalf("unexpected change %+v", got[0])
	}
}

func TestRemoveOnlyRemovableTypes(t *testing.T) {
	interactions := &fakeInteractionsRepo{}
	service := NewInteractionService(interactions, &fakeEventsRepo{}, bus.New(), testLogger())

	for _, appendOnly := range []string{"view", "click", "share"} {
		err := service.Remove(context.Background(), uuid.New(), uuid.New(), appendOnly, "token")
		if !errors.Is(err, models.ErrInvalidInteractionType) {
			t.Fatalf("Remove %s: got %v, want ErrInvalidInteractionType", appendOnly, err)
		}
	}
	if len(interactions.deletes) != 0 {
		t.Fatal("no delete should have been issued")
	}

	if err := service.Remove(context.Background(), uuid.New(), uuid.New(), "attend", "token"); err != nil {
		t.Fatalf("Remove attend: %v", err)
	}
	if len(interactions.deletes) != 1 {
		t.Fatalf("got %d deletes, want 1", len(interactions.deletes))
	}
}
