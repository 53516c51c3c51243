package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/bus"
	"github.com/locallore/server/internal/models"
)

type InteractionService struct {
	interactions models.InteractionsRepo
	events       models.EventsRepo
	changes      *bus.ChangeBus
	logger       *slog.Logger
}

func NewInteractionService(interactions models.InteractionsRepo, events models.EventsRepo, changes *bus.ChangeBus, logger *slog.Logger) *InteractionService {
	return &InteractionService{
		interactions: interactions,
		events:       events,
		changes:      changes,
		logger:       logger,
	}
}

// Record stores one interaction. Views additionally bump the event's
// aggregate counter; the two writes are independent, so a failed
// counter bump never hides a recorded view and vice versa.
func (is *InteractionService) Record(ctx context.Context, userID, eventID uuid.UUID, rawType string, accessToken string) error {
	if userID == uuid.Nil {
		return models.ErrAuthenticationRequired
	}
	if eventID == uuid.Nil {
		return fmt.Errorf("invalid event ID")
	}

	interactionType, err := models.ParseInteractionType(rawType)
	if err != nil {
		return err
	}

	upsertErr := is.interactions.UpsertInteraction(ctx, userID, eventID, interactionType, accessToken)

	if interactionType == models.InteractionView {
		if incErr := is.events.IncrementViewCount(ctx, eventID); incErr != nil {
			is.logger.Warn("view count increment failed", "event_id", eventID, "error", incErr)
		}
	}

	if upsertErr != nil {
		return upsertErr
	}

	is.changes.Publish(bus.Change{
		Table:   models.InteractionsTable,
		EventID: eventID,
		UserID:  userID,
		Kind:    "upsert",
		Detail:  string(interactionType),
	})
	return nil
}

// RecordAnonymousView bumps the view counter for a visitor with no
// session. No interaction row is written, so anonymous views never
// feed personalization.
func (is *InteractionService) RecordAnonymousView(ctx context.Context, eventID uuid.UUID) error {
	if eventID == uuid.Nil {
		return fmt.Errorf("invalid event ID")
	}
	return is.events.IncrementViewCount(ctx, eventID)
}

// Remove undoes a bookmark or attend. Views, clicks and shares are
// historical facts and cannot be removed.
func (is *InteractionService) Remove(ctx context.Context, userID, eventID uuid.UUID, rawType string, accessToken string) error {
	if userID == uuid.Nil {
		return models.ErrAuthenticationRequired
	}
	if eventID == uuid.Nil {
		return fmt.Errorf("invalid event ID")
	}

	interactionType, err := models.ParseInteractionType(rawType)
	if err != nil {
		return err
	}
	if !interactionType.Removable() {
		return fmt.Errorf("%w: %q cannot be removed", models.ErrInvalidInteractionType, interactionType)
	}

	if err := is.interactions.DeleteInteraction(ctx, userID, eventID, interactionType, accessToken); err != nil {
		return err
	}

	is.changes.Publish(bus.Change{
		Table:   models.InteractionsTable,
		EventID: eventID,
		UserID:  userID,
		Kind:    "delete",
		Detail:  string(interactionType),
	})
	return nil
}

// ListBookmarkedEvents hydrates the user's bookmarked event rows,
// filtered to events that have not ended.
func (is *InteractionService) ListBookmarkedEvents(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	if userID == uuid.Nil {
		return nil, models.ErrAuthenticationRequired
	}

	ids, err := is.interactions.ListEventIDsForUser(ctx, userID, models.InteractionBookmark)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %v", err)
	}
	if len(ids) == 0 {
		return []*models.Event{}, nil
	}

	return is.events.ListActiveEventsByIDs(ctx, ids, 0, len(ids))
}

// ListAttendees returns the user ids who marked themselves attending.
func (is *InteractionService) ListAttendees(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}
	return is.interactions.ListUsersForEvent(ctx, eventID, models.InteractionAttend)
}
