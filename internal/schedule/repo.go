package schedule

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository persists schedule configuration in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertTerm creates a term or renames an existing one.
func (r *Repository) UpsertTerm(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO terms (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
	`, id, name)
	return err
}

// ListTerms returns all terms ordered by id.
func (r *Repository) ListTerms(ctx context.Context) ([]Term, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM terms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// DeleteTerm removes a term.
func (r *Repository) DeleteTerm(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM terms WHERE id = $1`, id)
	return err
}

// InsertSlot writes a new slot template.
func (r *Repository) InsertSlot(ctx context.Context, s Slot) (Slot, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO times (id, name, category, term, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, s.ID, s.Name, s.Category, s.Term, s.DisplayOrder)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Slot{}, err
	}
	return s, nil
}

// UpdateSlot rewrites a slot template.
func (r *Repository) UpdateSlot(ctx context.Context, s Slot) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE times SET name = $2, category = $3, term = $4, display_order = $5
		WHERE id = $1
	`, s.ID, s.Name, s.Category, s.Term, s.DisplayOrder)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSlot removes a slot template.
func (r *Repository) DeleteSlot(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM times WHERE id = $1`, id)
	return err
}

// GetSlot returns one slot template.
func (r *Repository) GetSlot(ctx context.Context, id string) (Slot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, category, term, display_order, created_at FROM times WHERE id = $1
	`, id)
	var s Slot
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Term, &s.DisplayOrder, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, ErrNotFound
	}
	return s, err
}

// ListSlots returns slot templates for a term in display order.
func (r *Repository) ListSlots(ctx context.Context, term string) ([]Slot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, term, display_order, created_at
		FROM times WHERE term = $1
		ORDER BY display_order, name
	`, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Term, &s.DisplayOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// InsertRequirement writes a requirement row.
func (r *Repository) InsertRequirement(ctx context.Context, req Requirement) (Requirement, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO requirements (id, term, category, required_count)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, req.ID, req.Term, req.Category, req.RequiredCount)
	if err := row.Scan(&req.CreatedAt); err != nil {
		return Requirement{}, err
	}
	return req, nil
}

// UpdateRequirement changes the required count.
func (r *Repository) UpdateRequirement(ctx context.Context, id string, requiredCount int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE requirements SET required_count = $2 WHERE id = $1
	`, id, requiredCount)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRequirement removes a requirement.
func (r *Repository) DeleteRequirement(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM requirements WHERE id = $1`, id)
	return err
}

// ListRequirements returns requirements for a term.
func (r *Repository) ListRequirements(ctx context.Context, term string) ([]Requirement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, term, category, required_count, created_at
		FROM requirements WHERE term = $1
		ORDER BY category
	`, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Requirement
	for rows.Next() {
		var req Requirement
		if err := rows.Scan(&req.ID, &req.Term, &req.Category, &req.RequiredCount, &req.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, req)
	}
	return res, rows.Err()
}

// RequirementExists reports whether a (term, category) requirement is configured.
func (r *Repository) RequirementExists(ctx context.Context, term, category string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM requirements WHERE term = $1 AND category = $2)
	`, term, category).Scan(&exists)
	return exists, err
}
