package models

import (
	"time"

	"github.com/google/uuid"
)

type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionClick    InteractionType = "click"
	InteractionBookmark InteractionType = "bookmark"
	InteractionShare    InteractionType = "share"
	InteractionAttend   InteractionType = "attend"
)

// ParseInteractionType validates a raw client value against the enum.
func ParseInteractionType(raw string) (InteractionType, error) {
	switch InteractionType(raw) {
	case InteractionView, InteractionClick, InteractionBookmark, InteractionShare, InteractionAttend:
		return InteractionType(raw), nil
	}
	return "", ErrInvalidInteractionType
}

// Removable reports whether the type supports explicit toggle-off.
// view/click/share rows are append-only.
func (t InteractionType) Removable() bool {
	return t == InteractionBookmark || t == InteractionAttend
}

// Interaction is one row of user_event_interactions, uniquely keyed by
// (user_id, event_id, interaction_type).
type Interaction struct {
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	EventID   uuid.UUID       `db:"event_id" json:"event_id"`
	Type      InteractionType `db:"interaction_type" json:"interaction_type"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
