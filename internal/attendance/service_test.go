package attendance

import (
	"context"
	"errors"
	"testing"

	"rollcall/internal/queue"
	"rollcall/internal/session"
)

type mockStore struct {
	lookupCalls int
	existsCalls int
	insertCalls int

	openSessionFn func(ctx context.Context, code string) (session.Session, error)
	hasRecordFn   func(ctx context.Context, sessionID, studentID string) (bool, error)
	insertFn      func(ctx context.Context, rec session.Record) (bool, error)
}

func (m *mockStore) OpenSessionByCode(ctx context.Context, code string) (session.Session, error) {
	m.lookupCalls++
	if m.openSessionFn != nil {
		return m.openSessionFn(ctx, code)
	}
	return session.Session{}, ErrSessionNotFound
}

func (m *mockStore) HasRecord(ctx context.Context, sessionID, studentID string) (bool, error) {
	m.existsCalls++
	if m.hasRecordFn != nil {
		return m.hasRecordFn(ctx, sessionID, studentID)
	}
	return false, nil
}

func (m *mockStore) InsertRecord(ctx context.Context, rec session.Record) (bool, error) {
	m.insertCalls++
	if m.insertFn != nil {
		return m.insertFn(ctx, rec)
	}
	return true, nil
}

type mockBumper struct {
	calls []string
}

func (m *mockBumper) Bump(_ context.Context, studentID string) error {
	m.calls = append(m.calls, studentID)
	return nil
}

var testStudent = Student{ID: "stu-1", Name: "Ada", Email: "ada@example.com"}

func TestRegister_RejectsBadCodesWithoutStoreAccess(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, nil, nil, nil, nil)

	for _, code := range []string{"", "123", "1234567", "12a456", "abcdef"} {
		if _, err := svc.Register(context.Background(), code, testStudent); !errors.Is(err, ErrInvalidCode) {
			t.Errorf("Register(%q) err = %v, want ErrInvalidCode", code, err)
		}
	}
	if store.lookupCalls != 0 || store.existsCalls != 0 || store.insertCalls != 0 {
		t.Fatalf("store touched for invalid codes: lookup=%d exists=%d insert=%d",
			store.lookupCalls, store.existsCalls, store.insertCalls)
	}
}

func TestRegister_SessionNotFound(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), "123456", testStudent)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if store.insertCalls != 0 {
		t.Fatal("insert attempted after lookup miss")
	}
}

func TestRegister_AlreadyRegistered(t *testing.T) {
	store := &mockStore{
		openSessionFn: func(ctx context.Context, code string) (session.Session, error) {
			return session.Session{ID: "sess-1", Name: "Surgery A", Code: code, IsOpen: true}, nil
		},
		hasRecordFn: func(ctx context.Context, sessionID, studentID string) (bool, error) {
			return true, nil
		},
	}
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), "123456", testStudent)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
	if store.insertCalls != 0 {
		t.Fatal("insert attempted for existing record")
	}
}

// A duplicate submit that slips past the existence check loses at the
// storage key and must still surface as already-registered.
func TestRegister_ConflictOnInsertReportsAlreadyRegistered(t *testing.T) {
	store := &mockStore{
		openSessionFn: func(ctx context.Context, code string) (session.Session, error) {
			return session.Session{ID: "sess-1", Name: "Surgery A", IsOpen: true}, nil
		},
		insertFn: func(ctx context.Context, rec session.Record) (bool, error) {
			return false, nil
		},
	}
	svc := NewService(store, nil, nil, nil, nil)

	_, err := svc.Register(context.Background(), "123456", testStudent)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegister_SuccessReportsNameBumpsVersionAndPublishes(t *testing.T) {
	var inserted session.Record
	store := &mockStore{
		openSessionFn: func(ctx context.Context, code string) (session.Session, error) {
			return session.Session{ID: "sess-1", Name: "Surgery A", IsOpen: true}, nil
		},
		insertFn: func(ctx context.Context, rec session.Record) (bool, error) {
			inserted = rec
			return true, nil
		},
	}
	bumper := &mockBumper{}
	q := queue.NewInMemory(4)
	svc := NewService(store, bumper, q, nil, nil)

	name, err := svc.Register(context.Background(), "123456", testStudent)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if name != "Surgery A" {
		t.Errorf("name = %q, want %q", name, "Surgery A")
	}
	if inserted.Status != StatusPresent {
		t.Errorf("status = %q, want %q", inserted.Status, StatusPresent)
	}
	if inserted.StudentName != "Ada" || inserted.StudentEmail != "ada@example.com" {
		t.Errorf("snapshot = %q/%q, want Ada/ada@example.com", inserted.StudentName, inserted.StudentEmail)
	}
	if len(bumper.calls) != 1 || bumper.calls[0] != "stu-1" {
		t.Errorf("version bumps = %v, want one for stu-1", bumper.calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, _ := q.Consume(ctx)
	msg := <-msgs
	if msg.Type != queue.TypeRegistration {
		t.Errorf("queued type = %q, want %q", msg.Type, queue.TypeRegistration)
	}
}
