package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DisplayTimezone is the fixed civil timezone events are rendered in.
// Timestamps are stored UTC.
const DisplayTimezone = "America/New_York"

var EventCategories = []string{"Food", "Study", "Club", "Social", "Academic", "Other"}

// Creator is the joined owner projection returned with event rows.
type Creator struct {
	DisplayName    string `json:"display_name,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

type Event struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title" validate:"required"`
	Description string    `db:"description" json:"description"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Location    string    `db:"location" json:"location,omitempty"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Category    string    `db:"category" json:"category" validate:"required"`
	Tags        []string  `db:"tags" json:"tags,omitempty"`
	ContactInfo string    `db:"contact_info" json:"contact_info,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	ViewCount   int       `db:"view_count" json:"view_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Creator     *Creator  `json:"creator,omitempty"`
}

// EventProjection is the lightweight row shipped to the ML service.
type EventProjection struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	UserID      uuid.UUID `json:"user_id"`
}

// ValidateWindow enforces the time invariant for create/update paths.
func (e *Event) ValidateWindow() error {
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !e.EndTime.After(e.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}

// IsActive reports whether the event is still ongoing or upcoming.
func (e *Event) IsActive(now time.Time) bool {
	return e.EndTime.After(now)
}

func (e *Event) Projection() EventProjection {
	return EventProjection{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Category:    e.Category,
		Tags:        e.Tags,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		UserID:      e.UserID,
	}
}
