package models

import (
	"time"

	"github.com/google/uuid"
)

// PredefinedTag is a curated tag offered by the tag selector.
type PredefinedTag struct {
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category,omitempty"`
}

// QualityScore is the advisory ML verdict stored per event. It never
// blocks event creation or update.
type QualityScore struct {
	EventID         uuid.UUID `db:"event_id" json:"event_id"`
	QualityScore    float64   `db:"quality_score" json:"quality_score"`
	SpamProbability float64   `db:"spam_probability" json:"spam_probability"`
	IsSpam          bool      `db:"is_spam" json:"is_spam"`
	ScoredAt        time.Time `db:"scored_at" json:"scored_at"`
}
