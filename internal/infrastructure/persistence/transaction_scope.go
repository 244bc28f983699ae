package persistence

import (
	"context"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls it back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appeng.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Engagements() engagement.Repository {
	return NewGormEngagementRepository(r.tx)
}

func (r *gormTransactionalRepositories) Clients() client.Repository {
	return NewGormClientRepository(r.tx)
}

func (r *gormTransactionalRepositories) GenerationRuns() engagement.GenerationRunRepository {
	return NewGormGenerationRunRepository(r.tx)
}

var (
	_ appeng.TransactionScope          = (*GormTransactionScope)(nil)
	_ appeng.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
