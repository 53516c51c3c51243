package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type InteractionsRepo interface {
	UpsertInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType InteractionType, accessToken string) error
	DeleteInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType InteractionType, accessToken string) error
	ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Interaction, error)
	ListAllInteractions(ctx context.Context) ([]Interaction, error)
	ListUsersForEvent(ctx context.Context, eventID uuid.UUID, interactionType InteractionType) ([]uuid.UUID, error)
	ListEventIDsForUser(ctx context.Context, userID uuid.UUID, interactionType InteractionType) ([]uuid.UUID, error)
}

// UpsertInteraction inserts the (user, event, type) row, collapsing
// duplicates on the table's unique constraint. A duplicate insert is
// success, not an error.
func (su *SupabaseRepo) UpsertInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType InteractionType, accessToken string) error {
	if userID == uuid.Nil || eventID == uuid.Nil {
		return fmt.Errorf("invalid user or event ID")
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	row := map[string]interface{}{
		"user_id":          userID,
		"event_id":         eventID,
		"interaction_type": interactionType,
	}

	_, _, err := client.From(InteractionsTable).
		Insert(row, true, "user_id,event_id,interaction_type", "", "").
		Execute()
	if err != nil {
		// 23505 is the backend's unique-constraint violation; the row
		// already exists, which is the state we wanted.
		if strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key") {
			return nil
		}
		return fmt.Errorf("failed to upsert interaction: %v", err)
	}
	return nil
}

// DeleteInteraction removes the matching row. Absence is not an error.
func (su *SupabaseRepo) DeleteInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType InteractionType, accessToken string) error {
	if userID == uuid.Nil || eventID == uuid.Nil {
		return fmt.Errorf("invalid user or event ID")
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	_, _, err := client.From(InteractionsTable).
		Delete("", "").
		Eq("user_id", userID.String()).
		Eq("event_id", eventID.String()).
		Eq("interaction_type", string(interactionType)).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete interaction: %v", err)
	}
	return nil
}

func (su *SupabaseRepo) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Interaction, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}

	raw, _, err := su.supabaseClient.From(InteractionsTable).
		Select("user_id,event_id,interaction_type,created_at", "", false).
		Eq("user_id", userID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list recent interactions: %v", err)
	}

	var interactions []Interaction
	if err := json.Unmarshal(raw, &interactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interaction rows: %v", err)
	}
	return interactions, nil
}

// ListAllInteractions returns the whole interaction table for the ML
// corpus. Bulk by design; the external model is stateless.
func (su *SupabaseRepo) ListAllInteractions(ctx context.Context) ([]Interaction, error) {
	raw, _, err := su.supabaseClient.From(InteractionsTable).
		Select("user_id,event_id,interaction_type,created_at", "", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %v", err)
	}

	var interactions []Interaction
	if err := json.Unmarshal(raw, &interactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interaction rows: %v", err)
	}
	return interactions, nil
}

// ListUsersForEvent backs attendee and bookmark counts for one event.
func (su *SupabaseRepo) ListUsersForEvent(ctx context.Context, eventID uuid.UUID, interactionType InteractionType) ([]uuid.UUID, error) {
	if eventID == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}

	raw, _, err := su.supabaseClient.From(InteractionsTable).
		Select("user_id", "", false).
		Eq("event_id", eventID.String()).
		Eq("interaction_type", string(interactionType)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list users for event: %v", err)
	}

	var rows []struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user rows: %v", err)
	}

	users := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.UserID)
	}
	return users, nil
}

// ListEventIDsForUser backs the bookmarks listing.
func (su *SupabaseRepo) ListEventIDsForUser(ctx context.Context, userID uuid.UUID, interactionType InteractionType) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("invalid user ID")
	}

	raw, _, err := su.supabaseClient.From(InteractionsTable).
		Select("event_id", "", false).
		Eq("user_id", userID.String()).
		Eq("interaction_type", string(interactionType)).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list events for user: %v", err)
	}

	var rows []struct {
		EventID uuid.UUID `json:"event_id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}

	events := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.EventID)
	}
	return events, nil
}
