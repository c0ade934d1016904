package stats

import (
	"context"
	"testing"
)

type mockSource struct {
	requirements map[string]int
	slotCats     []string
	sessionCats  []string
	attendedCats []string
}

func (m *mockSource) Requirements(context.Context, string) (map[string]int, error) {
	return m.requirements, nil
}
func (m *mockSource) SlotCategories(context.Context, string) ([]string, error) {
	return m.slotCats, nil
}
func (m *mockSource) SessionCategories(context.Context, string) ([]string, error) {
	return m.sessionCats, nil
}
func (m *mockSource) AttendedCategories(context.Context, string, string) ([]string, error) {
	return m.attendedCats, nil
}

type mockVersions struct {
	version int64
}

func (m *mockVersions) Current(context.Context, string) (int64, error) {
	return m.version, nil
}

func findRow(t *testing.T, rows []Row, category string) Row {
	t.Helper()
	for _, r := range rows {
		if r.Category == category {
			return r
		}
	}
	t.Fatalf("no row for category %q in %+v", category, rows)
	return Row{}
}

func TestCompute_RequirementNotYetMet(t *testing.T) {
	src := &mockSource{
		requirements: map[string]int{"Surgery": 5},
		slotCats:     []string{"Surgery", "Surgery", "Surgery", "Surgery", "Surgery", "Surgery"},
		sessionCats:  []string{"Surgery", "Surgery", "Surgery", "Surgery"},
		attendedCats: []string{"Surgery", "Surgery", "Surgery"},
	}
	svc := NewService(src, &mockVersions{version: 3}, "en")

	out, err := svc.Compute(context.Background(), "stu-1", "2026S")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	row := findRow(t, out.Rows, "Surgery")
	if row.AttendedCount != 3 {
		t.Errorf("attended = %d, want 3", row.AttendedCount)
	}
	if row.TotalSessions != 6 {
		t.Errorf("total = %d, want 6 (capacity from slots, not opened sessions)", row.TotalSessions)
	}
	if row.RequiredCount == nil || *row.RequiredCount != 5 {
		t.Errorf("required = %v, want 5", row.RequiredCount)
	}
	if row.MetRequirement {
		t.Error("3 of 5 reported as met")
	}
	if out.Version != 3 {
		t.Errorf("version = %d, want 3", out.Version)
	}
}

func TestCompute_RequirementMet(t *testing.T) {
	src := &mockSource{
		requirements: map[string]int{"Anatomy": 2},
		slotCats:     []string{"Anatomy", "Anatomy", "Anatomy"},
		attendedCats: []string{"Anatomy", "Anatomy"},
	}
	svc := NewService(src, nil, "en")

	out, err := svc.Compute(context.Background(), "stu-1", "2026S")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	row := findRow(t, out.Rows, "Anatomy")
	if !row.MetRequirement {
		t.Error("2 of 2 not reported as met")
	}
}

// A category present only through slot templates still shows up, with no
// requirement configured.
func TestCompute_CategoryWithoutRequirement(t *testing.T) {
	src := &mockSource{
		requirements: map[string]int{"Surgery": 5},
		slotCats:     []string{"Radiology"},
	}
	svc := NewService(src, nil, "en")

	out, err := svc.Compute(context.Background(), "stu-1", "2026S")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	row := findRow(t, out.Rows, "Radiology")
	if row.RequiredCount != nil {
		t.Errorf("required = %v, want nil", row.RequiredCount)
	}
	if row.MetRequirement {
		t.Error("category without requirement reported as met")
	}
	// the requirement-only category appears too, with zero slots
	surg := findRow(t, out.Rows, "Surgery")
	if surg.TotalSessions != 0 {
		t.Errorf("Surgery total = %d, want 0", surg.TotalSessions)
	}
}

func TestCompute_SortsCaseInsensitively(t *testing.T) {
	src := &mockSource{
		slotCats: []string{"surgery", "Anatomy", "Radiology"},
	}
	svc := NewService(src, nil, "en")

	out, err := svc.Compute(context.Background(), "stu-1", "2026S")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	got := make([]string, len(out.Rows))
	for i, r := range out.Rows {
		got[i] = r.Category
	}
	want := []string{"Anatomy", "Radiology", "surgery"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
