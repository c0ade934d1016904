package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"rollcall/internal/schedule"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	CloseOpenByCreator(ctx context.Context, teacherID string) error
	Close(ctx context.Context, id string) error
	ListByCreator(ctx context.Context, teacherID string, limit int) ([]Session, error)
	Roster(ctx context.Context, sessionID string) ([]Record, error)
}

// SlotSource resolves slot templates.
type SlotSource interface {
	Slot(ctx context.Context, id string) (schedule.Slot, error)
}

// Service manages the session lifecycle. The single-open-session rule is
// best effort: the previous session is closed with a separate statement
// before the new one is created, not inside one transaction.
type Service struct {
	store Store
	slots SlotSource
}

// NewService creates a service.
func NewService(store Store, slots SlotSource) *Service {
	return &Service{store: store, slots: slots}
}

// GenerateCode returns a uniform random 6-digit join code.
func GenerateCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// Open creates a live session for the given slot template, closing any
// session the teacher already has open. No retry on failure.
func (s *Service) Open(ctx context.Context, teacherID, timeID string) (Session, error) {
	slot, err := s.slots.Slot(ctx, timeID)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return Session{}, ErrTimeNotFound
		}
		return Session{}, err
	}
	if err := s.store.CloseOpenByCreator(ctx, teacherID); err != nil {
		return Session{}, err
	}
	return s.store.Insert(ctx, Session{
		TimeID:    slot.ID,
		Name:      slot.Name,
		Category:  slot.Category,
		Term:      slot.Term,
		Code:      GenerateCode(),
		CreatedBy: teacherID,
	})
}

// Close marks a session closed. Idempotent.
func (s *Service) Close(ctx context.Context, id string) error {
	return s.store.Close(ctx, id)
}

// Get returns one session.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.store.Get(ctx, id)
}

// List returns a teacher's sessions, newest first.
func (s *Service) List(ctx context.Context, teacherID string, limit int) ([]Session, error) {
	return s.store.ListByCreator(ctx, teacherID, limit)
}

// Roster returns the current arrival-ordered roster.
func (s *Service) Roster(ctx context.Context, sessionID string) ([]Record, error) {
	return s.store.Roster(ctx, sessionID)
}
