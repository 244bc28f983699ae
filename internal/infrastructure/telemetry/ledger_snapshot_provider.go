package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerSnapshotProvider aggregates open engagements straight from the
// operaciones table in one grouped query.
type GormLedgerSnapshotProvider struct {
	db *gorm.DB
}

// NewGormLedgerSnapshotProvider creates the provider
func NewGormLedgerSnapshotProvider(db *gorm.DB) *GormLedgerSnapshotProvider {
	return &GormLedgerSnapshotProvider{db: db}
}

// Snapshot returns one row per owner with at least one open engagement.
func (p *GormLedgerSnapshotProvider) Snapshot(ctx context.Context, today time.Time) ([]LedgerSnapshot, error) {
	type row struct {
		OwnerID    uuid.UUID `gorm:"column:user_id"`
		Pending    int64     `gorm:"column:pending"`
		InProgress int64     `gorm:"column:in_progress"`
		Overdue    int64     `gorm:"column:overdue"`
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var rows []row
	err := p.db.WithContext(ctx).
		Table("operaciones").
		Select(`user_id,
			SUM(CASE WHEN estado = 'PENDIENTE' THEN 1 ELSE 0 END) AS pending,
			SUM(CASE WHEN estado = 'EN_PROCESO' THEN 1 ELSE 0 END) AS in_progress,
			SUM(CASE WHEN estado = 'PENDIENTE' AND fecha_limite IS NOT NULL AND fecha_limite <= ? THEN 1 ELSE 0 END) AS overdue`, day).
		Where("estado <> ?", "COMPLETADO").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]LedgerSnapshot, len(rows))
	for i, r := range rows {
		out[i] = LedgerSnapshot{OwnerID: r.OwnerID, Pending: r.Pending, InProgress: r.InProgress, Overdue: r.Overdue}
	}
	return out, nil
}
