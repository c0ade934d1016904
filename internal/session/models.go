package session

import (
	"errors"
	"time"
)

// Session is a live, code-protected attendance window opened from a slot
// template. At most one session per teacher is open at a time.
type Session struct {
	ID        string    `json:"id"`
	TimeID    string    `json:"time_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Term      string    `json:"term"`
	Code      string    `json:"code"`
	CreatedBy string    `json:"created_by"`
	IsOpen    bool      `json:"is_open"`
	CreatedAt time.Time `json:"created_at"`
}

// Record is one student's attendance mark inside a session. RecordedAt is
// nil when the server timestamp has not resolved; such records sort first.
type Record struct {
	SessionID    string     `json:"session_id"`
	StudentID    string     `json:"student_id"`
	StudentName  string     `json:"student_name"`
	StudentEmail string     `json:"student_email"`
	Status       string     `json:"status"`
	RecordedAt   *time.Time `json:"recorded_at,omitempty"`
}

var (
	ErrNotFound     = errors.New("session not found")
	ErrTimeNotFound = errors.New("time slot not found")
)
