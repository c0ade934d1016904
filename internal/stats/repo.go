package stats

import (
	"context"
	"database/sql"
)

// Repository reads the aggregation inputs from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Requirements returns (category, required count) pairs for a term.
func (r *Repository) Requirements(ctx context.Context, term string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, required_count FROM requirements WHERE term = $1
	`, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		res[category] = count
	}
	return res, rows.Err()
}

// SlotCategories returns the category of every slot template in a term,
// one entry per slot. Capacity per category derives from these, not from
// sessions actually opened.
func (r *Repository) SlotCategories(ctx context.Context, term string) ([]string, error) {
	return r.categoryList(ctx, `SELECT category FROM times WHERE term = $1`, term)
}

// SessionCategories returns the category of every session in a term.
func (r *Repository) SessionCategories(ctx context.Context, term string) ([]string, error) {
	return r.categoryList(ctx, `SELECT category FROM sessions WHERE term = $1`, term)
}

// AttendedCategories returns one entry per session in the term the
// student holds an attendance record for.
func (r *Repository) AttendedCategories(ctx context.Context, term, studentID string) ([]string, error) {
	return r.categoryList(ctx, `
		SELECT s.category
		FROM sessions s
		JOIN attendance a ON a.session_id = s.id AND a.student_id = $2
		WHERE s.term = $1
	`, term, studentID)
}

func (r *Repository) categoryList(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
