package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/bus"
	"github.com/locallore/server/internal/models"
)

// activityWriteDeadline bounds each asynchronous read-model write.
const activityWriteDeadline = 5 * time.Second

// ActivityService maintains the per-user activity read model in
// MongoDB. It is fed from the change bus, so interaction writes never
// wait on it, and degraded Mongo only costs the activity tab.
type ActivityService struct {
	activity models.ActivityRepo
	logger   *slog.Logger
}

func NewActivityService(activity models.ActivityRepo, changes *bus.ChangeBus, logger *slog.Logger) *ActivityService {
	as := &ActivityService{
		activity: activity,
		logger:   logger,
	}
	changes.Subscribe(models.InteractionsTable, func(change bus.Change) bool {
		return change.Kind == "upsert"
	}, as.onInteraction)
	return as
}

func (as *ActivityService) onInteraction(change bus.Change) {
	interactionType, err := models.ParseInteractionType(change.Detail)
	if err != nil {
		return
	}

	// Bus delivery is synchronous; do the Mongo write off the request
	// path.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), activityWriteDeadline)
		defer cancel()

		if err := as.activity.RecordActivity(ctx, change.UserID, change.EventID, interactionType); err != nil {
			as.logger.Warn("activity read model write failed",
				"user_id", change.UserID,
				"event_id", change.EventID,
				"error", err,
			)
		}
	}()
}

func (as *ActivityService) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityEntry, error) {
	if userID == uuid.Nil {
		return nil, models.ErrAuthenticationRequired
	}
	if limit <= 0 {
		limit = 50
	}
	return as.activity.ListRecentActivity(ctx, userID, limit)
}
