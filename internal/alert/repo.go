package alert

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Alerts is the alert store seam.
type Alerts interface {
	Get(ctx context.Context, id uuid.UUID) (*Alert, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Alert, error)
	ListActive(ctx context.Context) ([]*Alert, error)
	Create(ctx context.Context, record *Alert) (*Alert, error)
	Update(ctx context.Context, record *Alert) (*Alert, error)
}

type alerts struct {
	repository.Repository[*Alert]
	db *bun.DB
}

var _ Alerts = (*alerts)(nil)

// NewAlertsRepository builds the bun-backed alert store.
func NewAlertsRepository(db *bun.DB) Alerts {
	repo := repository.NewRepository[*Alert](db, repository.ModelHandlers[*Alert]{
		NewRecord: func() *Alert { return &Alert{} },
		GetID: func(a *Alert) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Alert, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &alerts{
		Repository: repo,
		db:         db,
	}
}

func (a *alerts) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	record := &Alert{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *alerts) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Alert, error) {
	var records []*Alert
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *alerts) ListActive(ctx context.Context) ([]*Alert, error) {
	var records []*Alert
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.status IN (?)", bun.In([]Status{StatusActive, StatusAcknowledged, StatusResponding})).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *alerts) Create(ctx context.Context, record *Alert) (*Alert, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = StatusActive
	}
	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *alerts) Update(ctx context.Context, record *Alert) (*Alert, error) {
	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(record.ID.String()))
}

// CreateAlertsSchema creates the emergency_alerts table if needed.
func CreateAlertsSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*Alert)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}
