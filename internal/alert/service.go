package alert

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// ErrAlertNotFound is returned when no alert matches the requested id.
var ErrAlertNotFound = goerrors.New("alert not found", goerrors.CategoryNotFound).
	WithTextCode("ALERT_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// CreateInput is the alert creation payload after transport validation.
type CreateInput struct {
	UserID      uuid.UUID
	AlertType   Type
	Severity    Severity
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
	Address     string
}

// Service drives the alert lifecycle over the store.
type Service struct {
	store Alerts
	now   func() time.Time
}

// NewService creates the alert service.
func NewService(store Alerts) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// WithClock overrides the time source, useful in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create raises a new alert in the ACTIVE state.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Alert, error) {
	record := &Alert{
		UserID:      input.UserID,
		AlertType:   input.AlertType,
		Severity:    input.Severity,
		Title:       input.Title,
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     input.Address,
		Status:      StatusActive,
	}

	record, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create alert")
	}
	return record, nil
}

// Get fetches a single alert.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAlertNotFound
		}
		return nil, err
	}
	return record, nil
}

// ListByUser returns a user's alerts, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Alert, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListActive returns every alert still in a live state.
func (s *Service) ListActive(ctx context.Context) ([]*Alert, error) {
	return s.store.ListActive(ctx)
}

// UpdateStatus applies a transition-checked status change.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, actor uuid.UUID) (*Alert, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := record.Transition(to, actor, s.now()); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, record)
}

// Escalate bumps the escalation level of a live alert.
func (s *Service) Escalate(ctx context.Context, id uuid.UUID) (*Alert, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := record.Escalate(s.now()); err != nil {
		return nil, err
	}

	return s.store.Update(ctx, record)
}
