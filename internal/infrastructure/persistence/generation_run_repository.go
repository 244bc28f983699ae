package persistence

import (
	"context"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGenerationRunRepository stores monthly billing audit rows
type GormGenerationRunRepository struct {
	db *gorm.DB
}

// NewGormGenerationRunRepository creates a new GormGenerationRunRepository
func NewGormGenerationRunRepository(db *gorm.DB) *GormGenerationRunRepository {
	return &GormGenerationRunRepository{db: db}
}

// Save inserts the audit row of a run
func (r *GormGenerationRunRepository) Save(ctx context.Context, run *engagement.GenerationRun) error {
	return r.db.WithContext(ctx).Create(models.GenerationRunModelFromDomain(run)).Error
}

// FindRecentForOwner returns the latest runs, newest first
func (r *GormGenerationRunRepository) FindRecentForOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]engagement.GenerationRun, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.GenerationRunModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	runs := make([]engagement.GenerationRun, len(rows))
	for i := range rows {
		runs[i] = *rows[i].ToDomain()
	}
	return runs, nil
}

// Ensure GormGenerationRunRepository implements engagement.GenerationRunRepository
var _ engagement.GenerationRunRepository = (*GormGenerationRunRepository)(nil)
