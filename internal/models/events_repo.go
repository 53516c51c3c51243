package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

// EventOrder selects the sort column for active-event listings.
type EventOrder string

const (
	OrderNewest  EventOrder = "created_at"
	OrderPopular EventOrder = "view_count"
)

// eventColumns embeds the owner projection the way the feed endpoints
// return it.
const eventColumns = "*, creator:user_id(display_name,graduation_year)"

type EventsRepo interface {
	CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateEvent(ctx context.Context, patch map[string]interface{}, id uuid.UUID, accessToken string) (*Event, error)
	DeleteEvent(ctx context.Context, ownerID, id uuid.UUID, accessToken string) error
	ListActiveEvents(ctx context.Context, orderBy EventOrder, offset, limit int) ([]*Event, error)
	ListAllActiveEvents(ctx context.Context) ([]*Event, error)
	ListActiveEventsByIDs(ctx context.Context, ids []uuid.UUID, offset, limit int) ([]*Event, error)
	ListActiveEventsExcluding(ctx context.Context, exclude []uuid.UUID, limit int) ([]*Event, error)
	ListEventProjections(ctx context.Context) ([]EventProjection, error)
	ListCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func unmarshalEvents(raw []byte) ([]*Event, error) {
	var events []*Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}
	return events, nil
}

func (su *SupabaseRepo) CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error) {
	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	eventData := map[string]interface{}{
		"id":           event.ID,
		"user_id":      event.UserID,
		"title":        event.Title,
		"description":  event.Description,
		"latitude":     event.Latitude,
		"longitude":    event.Longitude,
		"location":     event.Location,
		"start_time":   event.StartTime.UTC(),
		"end_time":     event.EndTime.UTC(),
		"category":     event.Category,
		"tags":         event.Tags,
		"contact_info": event.ContactInfo,
		"image_url":    event.ImageURL,
		"view_count":   0,
		"created_at":   event.CreatedAt,
	}

	raw, count, err := client.From(EventsTable).
		Insert(eventData, false, "", "", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %v", err)
	}

	events, err := unmarshalEvents(raw)
	if err != nil {
		return nil, err
	}
	if count == 0 || len(events) == 0 {
		return nil, fmt.Errorf("no event data returned after insert")
	}
	return events[0], nil
}

func (su *SupabaseRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}

	raw, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get event by ID: %v", err)
	}

	events, err := unmarshalEvents(raw)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events[0], nil
}

func (su *SupabaseRepo) UpdateEvent(ctx context.Context, patch map[string]interface{}, id uuid.UUID, accessToken string) (*Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	raw, count, err := client.From(EventsTable).
		Update(patch, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %v", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	events, err := unmarshalEvents(raw)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no event data returned after update")
	}
	return events[0], nil
}

func (su *SupabaseRepo) DeleteEvent(ctx context.Context, ownerID, id uuid.UUID, accessToken string) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return fmt.Errorf("invalid owner or event ID")
	}

	client := su.supabaseClient
	if accessToken != "" {
		authClient, err := su.GetAuthenticatedClient(accessToken)
		if err != nil {
			return fmt.Errorf("failed to create authenticated client: %v", err)
		}
		client = authClient
	}

	// Interactions cascade on the backend's foreign key.
	_, count, err := client.From(EventsTable).
		Delete("", "exact").
		Eq("id", id.String()).
		Eq("user_id", ownerID.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete event: %v", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (su *SupabaseRepo) ListActiveEvents(ctx context.Context, orderBy EventOrder, offset, limit int) ([]*Event, error) {
	raw, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Gt("end_time", nowUTC()).
		Order(string(orderBy), &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list active events: %v", err)
	}
	return unmarshalEvents(raw)
}

// ListAllActiveEvents returns the full active corpus newest-first; the
// rule-based recommender windows it in memory.
func (su *SupabaseRepo) ListAllActiveEvents(ctx context.Context) ([]*Event, error) {
	raw, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Gt("end_time", nowUTC()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list active events: %v", err)
	}
	return unmarshalEvents(raw)
}

func (su *SupabaseRepo) ListActiveEventsByIDs(ctx context.Context, ids []uuid.UUID, offset, limit int) ([]*Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw, _, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		In("id", idStrings(ids)).
		Gt("end_time", nowUTC()).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to hydrate events: %v", err)
	}
	return unmarshalEvents(raw)
}

func (su *SupabaseRepo) ListActiveEventsExcluding(ctx context.Context, exclude []uuid.UUID, limit int) ([]*Event, error) {
	query := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Gt("end_time", nowUTC())

	if len(exclude) > 0 {
		// PostgREST not-in filter wants "(id1,id2,...)"
		query = query.Not("id", "in", "("+strings.Join(idStrings(exclude), ",")+")")
	}

	raw, _, err := query.
		Order("view_count", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list top-up events: %v", err)
	}
	return unmarshalEvents(raw)
}

func (su *SupabaseRepo) ListEventProjections(ctx context.Context) ([]EventProjection, error) {
	raw, _, err := su.supabaseClient.From(EventsTable).
		Select("id,title,description,category,tags,latitude,longitude,start_time,end_time,user_id", "", false).
		Gt("end_time", nowUTC()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list event projections: %v", err)
	}

	var projections []EventProjection
	if err := json.Unmarshal(raw, &projections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event projections: %v", err)
	}
	return projections, nil
}

func (su *SupabaseRepo) ListCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw, _, err := su.supabaseClient.From(EventsTable).
		Select("category", "", false).
		In("id", idStrings(ids)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list event categories: %v", err)
	}

	var rows []struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category rows: %v", err)
	}

	categories := make([]string, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.Category)
	}
	return categories, nil
}

// IncrementViewCount calls the backend's atomic counter procedure. The
// procedure returns the new count, so an empty response means the call
// did not reach the row.
func (su *SupabaseRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("invalid event ID")
	}

	res := su.supabaseClient.Rpc("increment_view_count", "", map[string]interface{}{
		"event_id": id.String(),
	})
	if res == "" {
		return fmt.Errorf("increment_view_count rpc failed for event %s", id)
	}
	return nil
}
