package engagement

import (
	"context"
	"time"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionScope runs a unit of work atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction. Returning an error rolls
	// the transaction back; returning nil commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction.
type TransactionalRepositories interface {
	Engagements() engagement.Repository
	Clients() client.Repository
	GenerationRuns() engagement.GenerationRunRepository
}

// OwnerLister enumerates the owners the scheduler bills.
type OwnerLister interface {
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// BillingMetrics records business counters. A nil BillingMetrics is valid.
type BillingMetrics interface {
	RecordPayment(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal)
	RecordEngagementsGenerated(ctx context.Context, ownerID uuid.UUID, trigger engagement.Trigger, count int)
	RecordDataQualityWarnings(ctx context.Context, ownerID uuid.UUID, count int)
}

// ReportRenderer turns a monthly report into a downloadable document.
type ReportRenderer interface {
	RenderCSV(report *CompletedMonthReport) ([]byte, error)
	// RenderPDF returns ErrExportUnavailable when no browser is configured.
	RenderPDF(ctx context.Context, report *CompletedMonthReport) ([]byte, error)
}

// ReportArchive stores rendered reports and hands out download links.
type ReportArchive interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Tests use it, and so do single-statement callers.
type NoOpTransactionScope struct {
	engagements    engagement.Repository
	clients        client.Repository
	generationRuns engagement.GenerationRunRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	engagements engagement.Repository,
	clients client.Repository,
	generationRuns engagement.GenerationRunRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		engagements:    engagements,
		clients:        clients,
		generationRuns: generationRuns,
	}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Engagements() engagement.Repository { return s.engagements }

func (s *NoOpTransactionScope) Clients() client.Repository { return s.clients }

func (s *NoOpTransactionScope) GenerationRuns() engagement.GenerationRunRepository {
	return s.generationRuns
}
