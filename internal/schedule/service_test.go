package schedule

import (
	"context"
	"errors"
	"testing"
)

type mockStore struct {
	requirements map[string]bool // "term/category" -> exists
	inserted     []Requirement
	slots        []Slot
}

func key(term, category string) string { return term + "/" + category }

func (m *mockStore) UpsertTerm(context.Context, string, string) error { return nil }
func (m *mockStore) ListTerms(context.Context) ([]Term, error)        { return nil, nil }
func (m *mockStore) DeleteTerm(context.Context, string) error         { return nil }

func (m *mockStore) InsertSlot(_ context.Context, s Slot) (Slot, error) {
	s.ID = "slot-new"
	m.slots = append(m.slots, s)
	return s, nil
}
func (m *mockStore) UpdateSlot(context.Context, Slot) error { return nil }
func (m *mockStore) DeleteSlot(context.Context, string) error {
	return nil
}
func (m *mockStore) GetSlot(context.Context, string) (Slot, error) {
	return Slot{}, ErrNotFound
}
func (m *mockStore) ListSlots(context.Context, string) ([]Slot, error) { return nil, nil }

func (m *mockStore) InsertRequirement(_ context.Context, req Requirement) (Requirement, error) {
	req.ID = "req-new"
	m.inserted = append(m.inserted, req)
	return req, nil
}
func (m *mockStore) UpdateRequirement(context.Context, string, int) error { return nil }
func (m *mockStore) DeleteRequirement(context.Context, string) error      { return nil }
func (m *mockStore) ListRequirements(context.Context, string) ([]Requirement, error) {
	return nil, nil
}
func (m *mockStore) RequirementExists(_ context.Context, term, category string) (bool, error) {
	return m.requirements[key(term, category)], nil
}

func TestCreateRequirement_OnePerTermAndCategory(t *testing.T) {
	store := &mockStore{requirements: map[string]bool{key("2026S", "Surgery"): true}}
	svc := NewService(store)

	_, err := svc.CreateRequirement(context.Background(), Requirement{Term: "2026S", Category: "Surgery", RequiredCount: 5})
	if !errors.Is(err, ErrRequirementExists) {
		t.Fatalf("err = %v, want ErrRequirementExists", err)
	}

	req, err := svc.CreateRequirement(context.Background(), Requirement{Term: "2026S", Category: "Anatomy", RequiredCount: 3})
	if err != nil {
		t.Fatalf("new category rejected: %v", err)
	}
	if req.ID == "" {
		t.Error("no id assigned")
	}
}

func TestCreateRequirement_RejectsInvalidInput(t *testing.T) {
	svc := NewService(&mockStore{requirements: map[string]bool{}})
	cases := []Requirement{
		{Term: "", Category: "Surgery", RequiredCount: 5},
		{Term: "2026S", Category: " ", RequiredCount: 5},
		{Term: "2026S", Category: "Surgery", RequiredCount: -1},
	}
	for _, req := range cases {
		if _, err := svc.CreateRequirement(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("CreateRequirement(%+v) err = %v, want ErrInvalidInput", req, err)
		}
	}
}

func TestCreateSlot_Validation(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store)

	if _, err := svc.CreateSlot(context.Background(), Slot{Name: "A"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}

	slot, err := svc.CreateSlot(context.Background(), Slot{Name: "Surgery A", Category: "Surgery", Term: "2026S"})
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	if slot.ID == "" {
		t.Error("no id assigned")
	}
}

func TestSaveTerm_Validation(t *testing.T) {
	svc := NewService(&mockStore{})
	if err := svc.SaveTerm(context.Background(), " ", "Spring"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank id: err = %v, want ErrInvalidInput", err)
	}
	if err := svc.SaveTerm(context.Background(), "2026S", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank name: err = %v, want ErrInvalidInput", err)
	}
	if err := svc.SaveTerm(context.Background(), "2026S", "Spring 2026"); err != nil {
		t.Errorf("valid term rejected: %v", err)
	}
}
