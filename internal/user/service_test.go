package user

import (
	"context"
	"errors"
	"testing"

	"rollcall/internal/auth"
	"rollcall/internal/mailer"
)

type mockStore struct {
	created      []Profile
	createdHash  string
	updatedEmail string

	getByEmailFn   func(ctx context.Context, email string) (Profile, string, error)
	passwordHashFn func(ctx context.Context, id string) (string, error)
	updateEmailFn  func(ctx context.Context, id, email string) error
}

func (m *mockStore) Create(_ context.Context, p Profile, hash string) (Profile, error) {
	p.ID = "user-1"
	m.created = append(m.created, p)
	m.createdHash = hash
	return p, nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (Profile, error) {
	return Profile{ID: id}, nil
}

func (m *mockStore) GetByEmail(ctx context.Context, email string) (Profile, string, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return Profile{}, "", ErrNotFound
}

func (m *mockStore) PasswordHash(ctx context.Context, id string) (string, error) {
	if m.passwordHashFn != nil {
		return m.passwordHashFn(ctx, id)
	}
	return "", ErrNotFound
}

func (m *mockStore) UpdateProfile(context.Context, string, string, *string, *string, string) error {
	return nil
}

func (m *mockStore) UpdateEmail(ctx context.Context, id, email string) error {
	m.updatedEmail = email
	if m.updateEmailFn != nil {
		return m.updateEmailFn(ctx, id, email)
	}
	return nil
}

func (m *mockStore) UpdatePassword(context.Context, string, string) error { return nil }

func (m *mockStore) UpdateAccess(context.Context, string, string, *string, []string) error {
	return nil
}

func (m *mockStore) List(context.Context) ([]Profile, error) { return nil, nil }

type mockMailer struct {
	sent []mailer.Message
}

func (m *mockMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

func TestSignUp_CreatesDefaultStudentProfile(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, nil, nil)

	p, err := svc.SignUp(context.Background(), "Ada@Example.com", "correct-horse", "Ada")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if p.Role != auth.RoleStudent {
		t.Errorf("role = %q, want student", p.Role)
	}
	if p.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", p.Email)
	}
	if p.SemesterStatus != StatusActive {
		t.Errorf("semester status = %q, want active", p.SemesterStatus)
	}
	if !auth.CheckPassword(store.createdHash, "correct-horse") {
		t.Error("stored hash does not match password")
	}
}

func TestSignUp_WeakPassword(t *testing.T) {
	svc := NewService(&mockStore{}, nil, nil)
	_, err := svc.SignUp(context.Background(), "a@b.com", "short", "A")
	if !errors.Is(err, auth.ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	hash, _ := auth.HashPassword("the-real-one")
	store := &mockStore{
		getByEmailFn: func(_ context.Context, email string) (Profile, string, error) {
			return Profile{ID: "user-1", Email: email}, hash, nil
		},
	}
	svc := NewService(store, nil, nil)

	if _, err := svc.SignIn(context.Background(), "a@b.com", "not-it"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.SignIn(context.Background(), "a@b.com", "the-real-one"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
}

func TestSignIn_UnknownEmailMapsToInvalidCredentials(t *testing.T) {
	svc := NewService(&mockStore{}, nil, nil)
	if _, err := svc.SignIn(context.Background(), "nobody@b.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePassword_Reauth(t *testing.T) {
	hash, _ := auth.HashPassword("current-pass")
	store := &mockStore{
		passwordHashFn: func(context.Context, string) (string, error) { return hash, nil },
	}
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "user-1", "", "new-password"); !errors.Is(err, ErrReauthRequired) {
		t.Errorf("empty current: err = %v, want ErrReauthRequired", err)
	}
	if err := svc.ChangePassword(ctx, "user-1", "wrong", "new-password"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong current: err = %v, want ErrWrongPassword", err)
	}
	if err := svc.ChangePassword(ctx, "user-1", "current-pass", "tiny"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("weak new: err = %v, want ErrWeakPassword", err)
	}
	if err := svc.ChangePassword(ctx, "user-1", "current-pass", "new-password"); err != nil {
		t.Errorf("valid change failed: %v", err)
	}
}

func TestChangeEmail_SendsVerification(t *testing.T) {
	hash, _ := auth.HashPassword("current-pass")
	store := &mockStore{
		passwordHashFn: func(context.Context, string) (string, error) { return hash, nil },
	}
	mail := &mockMailer{}
	svc := NewService(store, mail, nil)

	if err := svc.ChangeEmail(context.Background(), "user-1", "current-pass", "New@Example.com"); err != nil {
		t.Fatalf("ChangeEmail: %v", err)
	}
	if store.updatedEmail != "new@example.com" {
		t.Errorf("stored email = %q, want lowercased", store.updatedEmail)
	}
	if len(mail.sent) != 1 || mail.sent[0].To != "new@example.com" {
		t.Errorf("verification mail = %+v, want one to new address", mail.sent)
	}
}

func TestChangeEmail_EmailInUse(t *testing.T) {
	hash, _ := auth.HashPassword("current-pass")
	store := &mockStore{
		passwordHashFn: func(context.Context, string) (string, error) { return hash, nil },
		updateEmailFn: func(context.Context, string, string) error {
			return ErrEmailInUse
		},
	}
	svc := NewService(store, nil, nil)

	if err := svc.ChangeEmail(context.Background(), "user-1", "current-pass", "taken@b.com"); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("err = %v, want ErrEmailInUse", err)
	}
}

func TestUpdateAccess_RejectsUnknownRole(t *testing.T) {
	svc := NewService(&mockStore{}, nil, nil)
	if _, err := svc.UpdateAccess(context.Background(), "user-1", "superuser", nil, nil); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("err = %v, want ErrInvalidRole", err)
	}
}
