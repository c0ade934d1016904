package attendance

import (
	"context"
	"database/sql"
	"errors"

	"rollcall/internal/session"
)

// Repository reads open sessions and writes attendance records.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// OpenSessionByCode finds the most recently opened session carrying code.
func (r *Repository) OpenSessionByCode(ctx context.Context, code string) (session.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, time_id, name, category, term, code, created_by, is_open, created_at
		FROM sessions
		WHERE code = $1 AND is_open = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, code)
	var s session.Session
	err := row.Scan(&s.ID, &s.TimeID, &s.Name, &s.Category, &s.Term, &s.Code, &s.CreatedBy, &s.IsOpen, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Session{}, ErrSessionNotFound
	}
	return s, err
}

// HasRecord reports whether the student already registered in the session.
func (r *Repository) HasRecord(ctx context.Context, sessionID, studentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM attendance WHERE session_id = $1 AND student_id = $2)
	`, sessionID, studentID).Scan(&exists)
	return exists, err
}

// InsertRecord writes an attendance record with a server timestamp. The
// (session_id, student_id) primary key makes the write conditional: a
// duplicate lands as a no-op and inserted comes back false, which closes
// the race window left by the existence check.
func (r *Repository) InsertRecord(ctx context.Context, rec session.Record) (inserted bool, err error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (session_id, student_id, student_name, student_email, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (session_id, student_id) DO NOTHING
	`, rec.SessionID, rec.StudentID, rec.StudentName, rec.StudentEmail, rec.Status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
