package schedule

import (
	"errors"
	"time"
)

// Term is an academic period / cohort identifier.
type Term struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Slot is an admin-defined bookable time slot template. Categories have
// no table of their own: they exist through the slots and requirements
// that name them.
type Slot struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Term         string    `json:"term"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// Requirement is the minimum attendance count for a (term, category) pair.
type Requirement struct {
	ID            string    `json:"id"`
	Term          string    `json:"term"`
	Category      string    `json:"category"`
	RequiredCount int       `json:"required_count"`
	CreatedAt     time.Time `json:"created_at"`
}

var (
	ErrNotFound          = errors.New("schedule record not found")
	ErrInvalidInput      = errors.New("invalid schedule input")
	ErrRequirementExists = errors.New("requirement already configured for term and category")
)
