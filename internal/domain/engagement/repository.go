package engagement

import (
	"context"
	"time"

	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter narrows engagement listings
type Filter struct {
	shared.Filter
	Status   *Status
	ClientID *uuid.UUID
}

// Stats aggregates counts and amounts for an owner's engagements.
type Stats struct {
	Total            int64
	Pending          int64
	InProgress       int64
	Completed        int64
	Overdue          int64
	TotalAmount      decimal.Decimal
	PendingAmount    decimal.Decimal
	InProgressAmount decimal.Decimal
	CompletedAmount  decimal.Decimal
}

// Repository is the Engagement Store. Every method is scoped by owner.
type Repository interface {
	// FindByIDForOwner returns ErrNotFound when the id is unknown or owned by someone else.
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Engagement, error)

	// FindByIDForUpdate is FindByIDForOwner holding a row lock until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*Engagement, error)

	// FindAllForOwner lists one page ordered by due date ascending, then newest first.
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter Filter) ([]Engagement, int64, error)

	// FindPendingDueBetween returns PENDIENTE engagements due in [from, to].
	FindPendingDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Engagement, error)

	// FindPendingDueBy returns PENDIENTE engagements due on or before date.
	FindPendingDueBy(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]Engagement, error)

	// FindDueBetween returns engagements of any status due in [from, to].
	FindDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Engagement, error)

	// FindCompletedBetween returns COMPLETADO engagements completed in [from, to],
	// newest completion first.
	FindCompletedBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]Engagement, error)

	// SumCompletedByMonth totals completed amounts per completion month (1..12) of year.
	SumCompletedByMonth(ctx context.Context, ownerID uuid.UUID, year int) (map[int]decimal.Decimal, error)

	// Stats computes counts and sums; overdue is evaluated against today.
	Stats(ctx context.Context, ownerID uuid.UUID, today time.Time) (*Stats, error)

	// CountRecurringInRange counts recurring engagements starting in [start, end].
	CountRecurringInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error)

	// CountByClient counts engagements referencing a client.
	CountByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error)

	// FindRecurringWithZeroTotal returns recurring engagements billed at 0.
	FindRecurringWithZeroTotal(ctx context.Context, ownerID uuid.UUID) ([]Engagement, error)

	// InsertMany persists all engagements in one statement. Either all rows are
	// written or none are.
	InsertMany(ctx context.Context, engagements []*Engagement) error

	// Save creates or updates an engagement
	Save(ctx context.Context, e *Engagement) error

	// DeleteForOwner removes an engagement
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
}

// GenerationRunRepository stores the audit row of each generation batch.
type GenerationRunRepository interface {
	Save(ctx context.Context, run *GenerationRun) error
	FindRecentForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]GenerationRun, error)
}
