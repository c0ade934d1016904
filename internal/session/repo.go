package session

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository persists sessions and reads their attendance rosters.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionColumns = `id, time_id, name, category, term, code, created_by, is_open, created_at`

func scanSession(row interface{ Scan(...any) error }) (Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.TimeID, &s.Name, &s.Category, &s.Term, &s.Code, &s.CreatedBy, &s.IsOpen, &s.CreatedAt)
	return s, err
}

// Insert writes a new session.
func (r *Repository) Insert(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO sessions (id, time_id, name, category, term, code, created_by, is_open)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING created_at
	`, s.ID, s.TimeID, s.Name, s.Category, s.Term, s.Code, s.CreatedBy)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, err
	}
	s.IsOpen = true
	return s, nil
}

// Get returns one session.
func (r *Repository) Get(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

// OpenByCode returns the most recently opened session with the given
// code. Closed sessions never match, so stale codes cannot collide.
func (r *Repository) OpenByCode(ctx context.Context, code string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE code = $1 AND is_open = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, code)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

// CloseOpenByCreator closes every open session owned by the teacher.
func (r *Repository) CloseOpenByCreator(ctx context.Context, teacherID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET is_open = FALSE WHERE created_by = $1 AND is_open = TRUE
	`, teacherID)
	return err
}

// Close marks a session closed. Closing an already closed session is a no-op.
func (r *Repository) Close(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_open = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish "already closed" (fine) from "no such session"
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// ListByCreator returns a teacher's sessions, newest first.
func (r *Repository) ListByCreator(ctx context.Context, teacherID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE created_by = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, teacherID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// Roster returns attendance records in arrival order. Records without a
// resolvable timestamp sort first, treated as time zero.
func (r *Repository) Roster(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, student_id, student_name, student_email, status, recorded_at
		FROM attendance
		WHERE session_id = $1
		ORDER BY recorded_at ASC NULLS FIRST
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.SessionID, &rec.StudentID, &rec.StudentName, &rec.StudentEmail, &rec.Status, &rec.RecordedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
