package attendance

import (
	"context"
	"errors"
	"log/slog"

	"rollcall/internal/metrics"
	"rollcall/internal/queue"
	"rollcall/internal/session"
)

// Registration errors, reported distinctly so the caller can show the
// right recoverable failure.
var (
	ErrInvalidCode       = errors.New("join code must be six digits")
	ErrSessionNotFound   = errors.New("no open session matches the code")
	ErrAlreadyRegistered = errors.New("already registered for this session")
)

// StatusPresent is the status marker written on successful registration.
const StatusPresent = "present"

// Store is the persistence surface the service needs.
type Store interface {
	OpenSessionByCode(ctx context.Context, code string) (session.Session, error)
	HasRecord(ctx context.Context, sessionID, studentID string) (bool, error)
	InsertRecord(ctx context.Context, rec session.Record) (bool, error)
}

// VersionBumper advances a student's statistics version counter.
type VersionBumper interface {
	Bump(ctx context.Context, studentID string) error
}

// Student is the identity snapshot stored with each record.
type Student struct {
	ID    string
	Name  string
	Email string
}

// Service validates and records registrations, idempotently per student.
type Service struct {
	store    Store
	versions VersionBumper
	events   queue.Queue
	mc       metrics.Recorder
	logger   *slog.Logger
}

// NewService creates a service. versions, events and mc may each be nil.
func NewService(store Store, versions VersionBumper, events queue.Queue, mc metrics.Recorder, logger *slog.Logger) *Service {
	if mc == nil {
		mc = metrics.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, versions: versions, events: events, mc: mc, logger: logger}
}

// Register redeems a join code for one student. Codes that are not
// exactly six digits are rejected before any store access. Returns the
// session's display name on success.
func (s *Service) Register(ctx context.Context, code string, student Student) (string, error) {
	if !ValidCode(code) {
		s.mc.RecordRegistration(metrics.OutcomeInvalidCode)
		return "", ErrInvalidCode
	}

	sess, err := s.store.OpenSessionByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			s.mc.RecordRegistration(metrics.OutcomeSessionNotFound)
			return "", err
		}
		s.mc.RecordRegistration(metrics.OutcomeError)
		return "", err
	}

	exists, err := s.store.HasRecord(ctx, sess.ID, student.ID)
	if err != nil {
		s.mc.RecordRegistration(metrics.OutcomeError)
		return "", err
	}
	if exists {
		s.mc.RecordRegistration(metrics.OutcomeAlreadyRegistered)
		return "", ErrAlreadyRegistered
	}

	inserted, err := s.store.InsertRecord(ctx, session.Record{
		SessionID:    sess.ID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		Status:       StatusPresent,
	})
	if err != nil {
		s.mc.RecordRegistration(metrics.OutcomeError)
		return "", err
	}
	if !inserted {
		// lost the race to a duplicate submit; the key held the invariant
		s.mc.RecordRegistration(metrics.OutcomeAlreadyRegistered)
		return "", ErrAlreadyRegistered
	}

	if s.versions != nil {
		if err := s.versions.Bump(ctx, student.ID); err != nil {
			s.logger.Warn("stats version bump failed", "student_id", student.ID, "err", err)
		}
	}
	if s.events != nil {
		msg := queue.NewRegistrationMessage(queue.RegistrationEvent{SessionID: sess.ID, StudentID: student.ID})
		if err := s.events.Publish(ctx, msg); err != nil {
			s.mc.RecordQueuePublishFailure()
			s.logger.Warn("registration event publish failed", "session_id", sess.ID, "err", err)
		}
	}

	s.mc.RecordRegistration(metrics.OutcomeSuccess)
	return sess.Name, nil
}
