package user

import (
	"context"
	"log/slog"
	"strings"

	"rollcall/internal/auth"
	"rollcall/internal/mailer"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, p Profile, passwordHash string) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, string, error)
	PasswordHash(ctx context.Context, id string) (string, error)
	UpdateProfile(ctx context.Context, id string, displayName string, phone, secondaryEmail *string, semesterStatus string) error
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAccess(ctx context.Context, id, role string, term *string, allowedTerms []string) error
	List(ctx context.Context) ([]Profile, error)
}

// Service owns identity resolution and profile mutation.
type Service struct {
	store  Store
	mail   mailer.Mailer
	logger *slog.Logger
}

// NewService creates a service.
func NewService(store Store, mail mailer.Mailer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, mail: mail, logger: logger}
}

// SignUp registers a credential and creates the default profile.
// First sign-in always yields role "student"; admins promote later.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Profile{}, ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return Profile{}, err
	}
	p := Profile{
		Email:          email,
		DisplayName:    displayName,
		Role:           auth.RoleStudent,
		SemesterStatus: StatusActive,
	}
	return s.store.Create(ctx, p, hash)
}

// SignIn checks a credential and returns the profile.
func (s *Service) SignIn(ctx context.Context, email, password string) (Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, hash, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			return Profile{}, ErrInvalidCredentials
		}
		return Profile{}, err
	}
	if !auth.CheckPassword(hash, password) {
		return Profile{}, ErrInvalidCredentials
	}
	return p, nil
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateProfile applies the self-service profile edits.
func (s *Service) UpdateProfile(ctx context.Context, id, displayName string, phone, secondaryEmail *string, semesterStatus string) (Profile, error) {
	if !ValidSemesterStatus(semesterStatus) {
		return Profile{}, ErrInvalidSemesterStat
	}
	if err := s.store.UpdateProfile(ctx, id, displayName, phone, secondaryEmail, semesterStatus); err != nil {
		return Profile{}, err
	}
	return s.store.GetByID(ctx, id)
}

// ChangePassword replaces the credential after re-authentication.
func (s *Service) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return ErrReauthRequired
	}
	hash, err := s.store.PasswordHash(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(hash, currentPassword) {
		return ErrWrongPassword
	}
	newHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, newHash)
}

// ChangeEmail updates the sign-in email after re-authentication and sends
// a verification message to the new address. Mail failures are logged only.
func (s *Service) ChangeEmail(ctx context.Context, id, currentPassword, newEmail string) error {
	if currentPassword == "" {
		return ErrReauthRequired
	}
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if newEmail == "" || !strings.Contains(newEmail, "@") {
		return ErrInvalidCredentials
	}
	hash, err := s.store.PasswordHash(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(hash, currentPassword) {
		return ErrWrongPassword
	}
	if err := s.store.UpdateEmail(ctx, id, newEmail); err != nil {
		return err
	}
	if s.mail != nil {
		msg := mailer.Message{
			To:      newEmail,
			Subject: "Verify your new sign-in email",
			Body:    "Your sign-in email was changed. If this was not you, contact an administrator.",
		}
		if err := s.mail.Send(ctx, msg); err != nil {
			s.logger.Warn("email change verification mail failed", "user_id", id, "err", err)
		}
	}
	return nil
}

// UpdateAccess sets the admin-managed role, term and term scope.
func (s *Service) UpdateAccess(ctx context.Context, id, role string, term *string, allowedTerms []string) (Profile, error) {
	switch role {
	case auth.RoleStudent, auth.RoleTeacher, auth.RoleAdmin:
	default:
		return Profile{}, ErrInvalidRole
	}
	if err := s.store.UpdateAccess(ctx, id, role, term, allowedTerms); err != nil {
		return Profile{}, err
	}
	return s.store.GetByID(ctx, id)
}

// List returns all profiles for admin screens.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.store.List(ctx)
}
