package alert_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-safety/backend/internal/alert"
)

// memAlerts is an in-memory alert.Alerts for service tests.
type memAlerts struct {
	records map[uuid.UUID]alert.Alert
}

func newMemAlerts() *memAlerts {
	return &memAlerts{records: map[uuid.UUID]alert.Alert{}}
}

func (m *memAlerts) Get(_ context.Context, id uuid.UUID) (*alert.Alert, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}
	out := rec
	return &out, nil
}

func (m *memAlerts) ListByUser(_ context.Context, userID uuid.UUID) ([]*alert.Alert, error) {
	var out []*alert.Alert
	for _, rec := range m.records {
		if rec.UserID == userID {
			r := rec
			out = append(out, &r)
		}
	}
	return out, nil
}

func (m *memAlerts) ListActive(_ context.Context) ([]*alert.Alert, error) {
	var out []*alert.Alert
	for _, rec := range m.records {
		if !alert.Terminal(rec.Status) {
			r := rec
			out = append(out, &r)
		}
	}
	return out, nil
}

func (m *memAlerts) Create(_ context.Context, record *alert.Alert) (*alert.Alert, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.records[record.ID] = *record
	out := *record
	return &out, nil
}

func (m *memAlerts) Update(_ context.Context, record *alert.Alert) (*alert.Alert, error) {
	m.records[record.ID] = *record
	out := *record
	return &out, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestService_Create(t *testing.T) {
	store := newMemAlerts()
	svc := alert.NewService(store)
	userID := uuid.New()

	record, err := svc.Create(context.Background(), alert.CreateInput{
		UserID:    userID,
		AlertType: alert.TypeSOS,
		Severity:  alert.SeverityCritical,
		Title:     "SOS triggered",
		Latitude:  56.95,
		Longitude: 24.1,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, alert.StatusActive, record.Status)
	assert.Equal(t, userID, record.UserID)
	assert.Zero(t, record.EscalationLevel)
}

func TestService_Get(t *testing.T) {
	svc := alert.NewService(newMemAlerts())

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, alert.ErrAlertNotFound)
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	actor := uuid.New()

	seed := func(t *testing.T, store *memAlerts, status alert.Status) *alert.Alert {
		t.Helper()
		rec, err := store.Create(ctx, &alert.Alert{UserID: uuid.New(), Status: status, Title: "x"})
		require.NoError(t, err)
		return rec
	}

	t.Run("walks the lifecycle and persists", func(t *testing.T) {
		store := newMemAlerts()
		svc := alert.NewService(store).WithClock(fixedClock(now))
		rec := seed(t, store, alert.StatusActive)

		rec, err := svc.UpdateStatus(ctx, rec.ID, alert.StatusAcknowledged, actor)
		require.NoError(t, err)
		assert.Equal(t, alert.StatusAcknowledged, rec.Status)

		rec, err = svc.UpdateStatus(ctx, rec.ID, alert.StatusResponding, actor)
		require.NoError(t, err)

		rec, err = svc.UpdateStatus(ctx, rec.ID, alert.StatusResolved, actor)
		require.NoError(t, err)
		assert.Equal(t, actor, *rec.ResolvedBy)
		assert.Equal(t, now, *rec.ResolvedAt)

		stored, _ := store.records[rec.ID]
		assert.Equal(t, alert.StatusResolved, stored.Status)
	})

	t.Run("rejects an illegal jump", func(t *testing.T) {
		store := newMemAlerts()
		svc := alert.NewService(store).WithClock(fixedClock(now))
		rec := seed(t, store, alert.StatusResponding)

		_, err := svc.UpdateStatus(ctx, rec.ID, alert.StatusCancelled, actor)
		assert.ErrorIs(t, err, alert.ErrInvalidTransition)
	})

	t.Run("rejects mutating a terminal alert", func(t *testing.T) {
		store := newMemAlerts()
		svc := alert.NewService(store)
		rec := seed(t, store, alert.StatusCancelled)

		_, err := svc.UpdateStatus(ctx, rec.ID, alert.StatusResolved, actor)
		assert.ErrorIs(t, err, alert.ErrTerminalStatus)
	})

	t.Run("unknown alert maps to not found", func(t *testing.T) {
		svc := alert.NewService(newMemAlerts())

		_, err := svc.UpdateStatus(ctx, uuid.New(), alert.StatusResolved, actor)
		assert.ErrorIs(t, err, alert.ErrAlertNotFound)
	})
}

func TestService_Escalate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	store := newMemAlerts()
	svc := alert.NewService(store).WithClock(fixedClock(now))

	rec, err := store.Create(ctx, &alert.Alert{UserID: uuid.New(), Status: alert.StatusActive, Title: "x"})
	require.NoError(t, err)

	rec, err = svc.Escalate(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.EscalationLevel)
	assert.Equal(t, now, *rec.EscalatedAt)

	stored := store.records[rec.ID]
	assert.Equal(t, 1, stored.EscalationLevel)
}

func TestService_Lists(t *testing.T) {
	ctx := context.Background()
	store := newMemAlerts()
	svc := alert.NewService(store)
	mine := uuid.New()

	_, err := store.Create(ctx, &alert.Alert{UserID: mine, Status: alert.StatusActive, Title: "a"})
	require.NoError(t, err)
	_, err = store.Create(ctx, &alert.Alert{UserID: mine, Status: alert.StatusResolved, Title: "b"})
	require.NoError(t, err)
	_, err = store.Create(ctx, &alert.Alert{UserID: uuid.New(), Status: alert.StatusResponding, Title: "c"})
	require.NoError(t, err)

	byUser, err := svc.ListByUser(ctx, mine)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}
