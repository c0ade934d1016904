package user

import (
	"errors"
	"time"
)

// Semester status values for student profiles.
const (
	StatusActive        = "active"
	StatusGapYear       = "gap_year"
	StatusLeave         = "leave"
	StatusResearchTrack = "research_track"
	StatusNotApplicable = "not_applicable"
)

// Profile is an application user. Role-dependent fields: Term and
// SemesterStatus apply to students, AllowedTerms to teachers and admins.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	Term           *string   `json:"term,omitempty"`
	SemesterStatus string    `json:"semester_status"`
	AllowedTerms   []string  `json:"allowed_terms,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	SecondaryEmail *string   `json:"secondary_email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Service errors, mapped to API codes at the handler layer.
var (
	ErrNotFound            = errors.New("user not found")
	ErrEmailInUse          = errors.New("email already in use")
	ErrWrongPassword       = errors.New("wrong password")
	ErrReauthRequired      = errors.New("requires recent login")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidSemesterStat = errors.New("invalid semester status")
	ErrInvalidRole         = errors.New("invalid role")
)

// ValidSemesterStatus reports whether s is a known semester status.
func ValidSemesterStatus(s string) bool {
	switch s {
	case StatusActive, StatusGapYear, StatusLeave, StatusResearchTrack, StatusNotApplicable:
		return true
	}
	return false
}
