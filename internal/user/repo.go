package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists user profiles in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

const profileColumns = `id, email, display_name, role, term, semester_status,
	array_to_string(allowed_terms, ','), phone, secondary_email, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (Profile, error) {
	var p Profile
	var allowed string
	if err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.Term, &p.SemesterStatus,
		&allowed, &p.Phone, &p.SecondaryEmail, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	if allowed != "" {
		p.AllowedTerms = strings.Split(allowed, ",")
	}
	return p, nil
}

// Create inserts a new profile with its password hash.
func (r *Repository) Create(ctx context.Context, p Profile, passwordHash string) (Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, role, term, semester_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, p.ID, p.Email, passwordHash, p.DisplayName, p.Role, p.Term, p.SemesterStatus)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return Profile{}, ErrEmailInUse
		}
		return Profile{}, err
	}
	return p, nil
}

// GetByID returns a single profile.
func (r *Repository) GetByID(ctx context.Context, id string) (Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

// GetByEmail returns a profile and its password hash for credential checks.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Profile, string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`, password_hash FROM users WHERE email = $1
	`, email)
	var p Profile
	var allowed, hash string
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.Role, &p.Term, &p.SemesterStatus,
		&allowed, &p.Phone, &p.SecondaryEmail, &p.CreatedAt, &p.UpdatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, "", ErrNotFound
	}
	if err != nil {
		return Profile{}, "", err
	}
	if allowed != "" {
		p.AllowedTerms = strings.Split(allowed, ",")
	}
	return p, hash, nil
}

// PasswordHash returns the stored hash for one user.
func (r *Repository) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return hash, err
}

// UpdateProfile updates the self-editable fields.
func (r *Repository) UpdateProfile(ctx context.Context, id string, displayName string, phone, secondaryEmail *string, semesterStatus string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET display_name = $2, phone = $3, secondary_email = $4, semester_status = $5, updated_at = NOW()
		WHERE id = $1
	`, id, displayName, phone, secondaryEmail, semesterStatus)
	return err
}

// UpdateEmail changes the sign-in email.
func (r *Repository) UpdateEmail(ctx context.Context, id, email string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET email = $2, updated_at = NOW() WHERE id = $1
	`, id, email)
	if isUniqueViolation(err) {
		return ErrEmailInUse
	}
	return err
}

// UpdatePassword stores a new password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id, passwordHash)
	return err
}

// UpdateAccess sets the admin-managed fields: role, term and allowed terms.
func (r *Repository) UpdateAccess(ctx context.Context, id, role string, term *string, allowedTerms []string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET role = $2, term = $3, allowed_terms = string_to_array($4, ','), updated_at = NOW()
		WHERE id = $1
	`, id, role, term, strings.Join(allowedTerms, ","))
	return err
}

// List returns all profiles ordered by email.
func (r *Repository) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
