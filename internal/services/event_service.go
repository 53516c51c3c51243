package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/bus"
	"github.com/locallore/server/internal/cache"
	"github.com/locallore/server/internal/connect"
	"github.com/locallore/server/internal/helpers"
	"github.com/locallore/server/internal/models"
	"github.com/locallore/server/internal/recommend"
)

// scoreDeadline bounds the fire-and-forget quality scoring write.
const scoreDeadline = 15 * time.Second

type EventService struct {
	events   models.EventsRepo
	tags     models.TagsRepo
	quality  models.QualityRepo
	gateway  *recommend.Gateway
	mapCache *cache.EventCache
	changes  *bus.ChangeBus
	logger   *slog.Logger
}

func NewEventService(events models.EventsRepo, tags models.TagsRepo, quality models.QualityRepo, gateway *recommend.Gateway, mapCache *cache.EventCache, changes *bus.ChangeBus, logger *slog.Logger) *EventService {
	es := &EventService{
		events:   events,
		tags:     tags,
		quality:  quality,
		gateway:  gateway,
		mapCache: mapCache,
		changes:  changes,
		logger:   logger,
	}
	// Any committed write on the events table stales the map viewport
	// cache.
	changes.Subscribe(models.EventsTable, nil, func(bus.Change) {
		es.mapCache.Invalidate()
	})
	return es
}

func validCategory(category string) bool {
	for _, c := range models.EventCategories {
		if c == category {
			return true
		}
	}
	return false
}

func (es *EventService) CreateEvent(ctx context.Context, event *models.Event, userID uuid.UUID, accessToken string) (*models.Event, error) {
	if err := models.Validate.Struct(event); err != nil {
		return nil, fmt.Errorf("invalid event data provided: %v", err)
	}
	if err := event.ValidateWindow(); err != nil {
		return nil, err
	}
	if !validCategory(event.Category) {
		return nil, fmt.Errorf("unsupported category: %s", event.Category)
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.UserID = userID
	event.CreatedAt = time.Now()

	// Upload the image first if a local file reference was supplied.
	var uploadedPublicIDs []string
	if event.ImageURL != "" && !strings.HasPrefix(event.ImageURL, "http") {
		uploadChan := make(chan struct {
			urls      []string
			publicIDs []string
		}, 1)
		errorChan := make(chan error, 1)

		go func() {
			urls, publicIDs, uploadErr := helpers.UploadImages(ctx, connect.Cld, []string{event.ImageURL}, helpers.EventsFolder)
			if uploadErr != nil {
				errorChan <- uploadErr
				return
			}
			uploadChan <- struct {
				urls      []string
				publicIDs []string
			}{urls, publicIDs}
		}()

		select {
		case result := <-uploadChan:
			if len(result.urls) > 0 {
				event.ImageURL = result.urls[0]
			}
			uploadedPublicIDs = result.publicIDs
		case uploadErr := <-errorChan:
			return nil, fmt.Errorf("failed to upload image: %v", uploadErr)
		case <-time.After(30 * time.Second):
			return nil, fmt.Errorf("image upload timeout")
		}
	}

	created, err := es.events.CreateEvent(ctx, event, accessToken)
	if err != nil {
		// If event creation fails, clean up the uploaded image
		if len(uploadedPublicIDs) > 0 {
			helpers.DeleteImages(ctx, connect.Cld, helpers.EventsFolder, uploadedPublicIDs)
		}
		return nil, err
	}

	es.scoreQualityAsync(created)

	es.changes.Publish(bus.Change{
		Table:   models.EventsTable,
		EventID: created.ID,
		UserID:  userID,
		Kind:    "upsert",
	})
	return created, nil
}

// scoreQualityAsync asks the ML service for an advisory spam verdict
// and stores it. Never blocks the caller and never fails the write.
func (es *EventService) scoreQualityAsync(event *models.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scoreDeadline)
		defer cancel()

		verdict := es.gateway.ScoreQuality(ctx, event.Title, event.Description)
		if verdict == nil {
			return
		}
		score := &models.QualityScore{
			EventID:         event.ID,
			QualityScore:    verdict.QualityScore,
			SpamProbability: verdict.SpamProbability,
			IsSpam:          verdict.IsSpam,
			ScoredAt:        time.Now(),
		}
		if err := es.quality.UpsertQualityScore(ctx, score); err != nil {
			es.logger.Warn("quality score write failed", "event_id", event.ID, "error", err)
			return
		}
		if verdict.IsSpam {
			es.logger.Info("event flagged as probable spam", "event_id", event.ID, "spam_probability", verdict.SpamProbability)
		}
	}()
}

var immutableEventFields = []string{"id", "user_id", "view_count", "created_at"}

func (es *EventService) UpdateEvent(ctx context.Context, patch map[string]interface{}, id uuid.UUID, accessToken string) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	for _, field := range immutableEventFields {
		delete(patch, field)
	}
	if category, ok := patch["category"].(string); ok && !validCategory(category) {
		return nil, fmt.Errorf("unsupported category: %s", category)
	}

	if err := es.validatePatchedWindow(ctx, patch, id); err != nil {
		return nil, err
	}

	updated, err := es.events.UpdateEvent(ctx, patch, id, accessToken)
	if err != nil {
		return nil, err
	}

	es.scoreQualityAsync(updated)

	es.changes.Publish(bus.Change{
		Table:   models.EventsTable,
		EventID: updated.ID,
		UserID:  updated.UserID,
		Kind:    "upsert",
	})
	return updated, nil
}

// validatePatchedWindow checks end-after-start on the row as it would
// look after the patch, before anything is written.
func (es *EventService) validatePatchedWindow(ctx context.Context, patch map[string]interface{}, id uuid.UUID) error {
	_, patchesStart := patch["start_time"]
	_, patchesEnd := patch["end_time"]
	if !patchesStart && !patchesEnd {
		return nil
	}

	existing, err := es.events.GetEventByID(ctx, id)
	if err != nil {
		return err
	}

	merged := models.Event{StartTime: existing.StartTime, EndTime: existing.EndTime}
	if patchesStart {
		parsed, err := patchTime(patch["start_time"])
		if err != nil {
			return fmt.Errorf("invalid start_time: %v", err)
		}
		merged.StartTime = parsed
	}
	if patchesEnd {
		parsed, err := patchTime(patch["end_time"])
		if err != nil {
			return fmt.Errorf("invalid end_time: %v", err)
		}
		merged.EndTime = parsed
	}
	return merged.ValidateWindow()
}

func patchTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339, v)
	default:
		return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp, got %T", value)
	}
}

func (es *EventService) DeleteEvent(ctx context.Context, ownerID, id uuid.UUID, accessToken string) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return fmt.Errorf("invalid owner ID or event ID")
	}

	if err := es.events.DeleteEvent(ctx, ownerID, id, accessToken); err != nil {
		return err
	}

	es.changes.Publish(bus.Change{
		Table:   models.EventsTable,
		EventID: id,
		UserID:  ownerID,
		Kind:    "delete",
	})
	return nil
}

func (es *EventService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("invalid event ID")
	}
	return es.events.GetEventByID(ctx, id)
}

func (es *EventService) ListEvents(ctx context.Context, orderBy models.EventOrder, offset, limit int) ([]*models.Event, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid offset or limit")
	}
	return es.events.ListActiveEvents(ctx, orderBy, offset, limit)
}

// ListForMap serves the map view through the viewport cache. Session
// reads tolerate the longer TTL so a browsing user keeps a stable map.
func (es *EventService) ListForMap(ctx context.Context, bounds cache.Bounds, session bool) ([]*models.Event, error) {
	if cached := es.mapCache.Get(bounds, session); cached != nil {
		return cached, nil
	}

	events, err := es.events.ListAllActiveEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load map events: %v", err)
	}

	if bounds != (cache.Bounds{}) {
		inView := make([]*models.Event, 0, len(events))
		for _, event := range events {
			if event.Latitude < bounds.SouthWestLat || event.Latitude > bounds.NorthEastLat {
				continue
			}
			if event.Longitude < bounds.SouthWestLng || event.Longitude > bounds.NorthEastLng {
				continue
			}
			inView = append(inView, event)
		}
		events = inView
	}

	es.mapCache.Set(bounds, events)
	return events, nil
}

// ListPredefinedTags exposes the curated tag list for the selector UI.
func (es *EventService) ListPredefinedTags(ctx context.Context) ([]models.PredefinedTag, error) {
	return es.tags.ListPredefinedTags(ctx)
}

// SuggestTags returns tag suggestions for a draft event. Model output
// is cross-checked against the curated tag list when that list is
// reachable; an unreachable list never blocks suggestions.
func (es *EventService) SuggestTags(ctx context.Context, title, description string) recommend.TagSuggestion {
	suggestion := es.gateway.SuggestTags(ctx, title, description)

	curated, err := es.tags.ListPredefinedTags(ctx)
	if err != nil {
		es.logger.Debug("predefined tag lookup failed, returning raw suggestions", "error", err)
		return suggestion
	}
	if len(curated) == 0 {
		return suggestion
	}

	known := make(map[string]bool, len(curated))
	for _, tag := range curated {
		known[tag.Name] = true
	}
	kept := suggestion.Tags[:0]
	for _, tag := range suggestion.Tags {
		if known[tag] {
			kept = append(kept, tag)
		}
	}
	if len(kept) == 0 {
		// Model invented every tag; fall back rather than return nothing.
		return recommend.RuleBasedTags(title + " " + description)
	}
	suggestion.Tags = kept
	return suggestion
}
