package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email" validate:"required,email"`
	Password       string    `db:"password" json:"password,omitempty"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	GraduationYear int       `db:"graduation_year" json:"graduation_year,omitempty"`
	Role           string    `db:"role" json:"role"`
	Preferences    []string  `db:"preferences" json:"preferences"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserProjection is the per-user slice shipped to the ML service for
// collaborative filtering.
type UserProjection struct {
	ID          uuid.UUID `json:"id"`
	Preferences []string  `json:"preferences"`
}
