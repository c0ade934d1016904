package schedule

import (
	"context"
	"strings"
)

// Store is the persistence surface the service needs.
type Store interface {
	UpsertTerm(ctx context.Context, id, name string) error
	ListTerms(ctx context.Context) ([]Term, error)
	DeleteTerm(ctx context.Context, id string) error
	InsertSlot(ctx context.Context, s Slot) (Slot, error)
	UpdateSlot(ctx context.Context, s Slot) error
	DeleteSlot(ctx context.Context, id string) error
	GetSlot(ctx context.Context, id string) (Slot, error)
	ListSlots(ctx context.Context, term string) ([]Slot, error)
	InsertRequirement(ctx context.Context, req Requirement) (Requirement, error)
	UpdateRequirement(ctx context.Context, id string, requiredCount int) error
	DeleteRequirement(ctx context.Context, id string) error
	ListRequirements(ctx context.Context, term string) ([]Requirement, error)
	RequirementExists(ctx context.Context, term, category string) (bool, error)
}

// Service validates and applies admin schedule configuration.
type Service struct {
	store Store
}

// NewService creates a service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// SaveTerm creates or renames a term.
func (s *Service) SaveTerm(ctx context.Context, id, name string) error {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	return s.store.UpsertTerm(ctx, id, name)
}

// Terms lists all terms.
func (s *Service) Terms(ctx context.Context) ([]Term, error) {
	return s.store.ListTerms(ctx)
}

// RemoveTerm deletes a term.
func (s *Service) RemoveTerm(ctx context.Context, id string) error {
	return s.store.DeleteTerm(ctx, id)
}

// CreateSlot adds a bookable slot template.
func (s *Service) CreateSlot(ctx context.Context, slot Slot) (Slot, error) {
	if strings.TrimSpace(slot.Name) == "" || strings.TrimSpace(slot.Category) == "" || strings.TrimSpace(slot.Term) == "" {
		return Slot{}, ErrInvalidInput
	}
	return s.store.InsertSlot(ctx, slot)
}

// UpdateSlot rewrites a slot template.
func (s *Service) UpdateSlot(ctx context.Context, slot Slot) error {
	if slot.ID == "" || strings.TrimSpace(slot.Name) == "" || strings.TrimSpace(slot.Category) == "" || strings.TrimSpace(slot.Term) == "" {
		return ErrInvalidInput
	}
	return s.store.UpdateSlot(ctx, slot)
}

// RemoveSlot deletes a slot template.
func (s *Service) RemoveSlot(ctx context.Context, id string) error {
	return s.store.DeleteSlot(ctx, id)
}

// Slot returns one slot template.
func (s *Service) Slot(ctx context.Context, id string) (Slot, error) {
	return s.store.GetSlot(ctx, id)
}

// Slots lists slot templates for a term.
func (s *Service) Slots(ctx context.Context, term string) ([]Slot, error) {
	return s.store.ListSlots(ctx, term)
}

// CreateRequirement adds a required-attendance count. One requirement per
// (term, category) pair; the check is service-level, not a store constraint.
func (s *Service) CreateRequirement(ctx context.Context, req Requirement) (Requirement, error) {
	if strings.TrimSpace(req.Term) == "" || strings.TrimSpace(req.Category) == "" || req.RequiredCount < 0 {
		return Requirement{}, ErrInvalidInput
	}
	exists, err := s.store.RequirementExists(ctx, req.Term, req.Category)
	if err != nil {
		return Requirement{}, err
	}
	if exists {
		return Requirement{}, ErrRequirementExists
	}
	return s.store.InsertRequirement(ctx, req)
}

// UpdateRequirement changes the required count.
func (s *Service) UpdateRequirement(ctx context.Context, id string, requiredCount int) error {
	if requiredCount < 0 {
		return ErrInvalidInput
	}
	return s.store.UpdateRequirement(ctx, id, requiredCount)
}

// RemoveRequirement deletes a requirement.
func (s *Service) RemoveRequirement(ctx context.Context, id string) error {
	return s.store.DeleteRequirement(ctx, id)
}

// Requirements lists requirements for a term.
func (s *Service) Requirements(ctx context.Context, term string) ([]Requirement, error) {
	return s.store.ListRequirements(ctx, term)
}
