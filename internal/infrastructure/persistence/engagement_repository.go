package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const operacionesTable = "operaciones"

// GormEngagementRepository implements engagement.Repository using GORM
type GormEngagementRepository struct {
	db *gorm.DB
}

// NewGormEngagementRepository creates a new GormEngagementRepository
func NewGormEngagementRepository(db *gorm.DB) *GormEngagementRepository {
	return &GormEngagementRepository{db: db}
}

// withClientName selects engagement columns plus the client's display name.
func (r *GormEngagementRepository) withClientName(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.OperacionModel{}).
		Select("operaciones.*, clientes.nombre AS cliente_nombre").
		Joins("LEFT JOIN clientes ON clientes.id = operaciones.cliente_id").
		Scopes(ownerScope(operacionesTable, ownerID))
}

func (r *GormEngagementRepository) findList(query *gorm.DB) ([]engagement.Engagement, error) {
	var rows []models.OperacionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	engagements := make([]engagement.Engagement, len(rows))
	for i := range rows {
		engagements[i] = *rows[i].ToDomain()
	}
	return engagements, nil
}

// FindByIDForOwner finds an engagement by ID for a specific owner
func (r *GormEngagementRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*engagement.Engagement, error) {
	var model models.OperacionModel
	if err := r.withClientName(ctx, ownerID).
		Where("operaciones.id = ?", id).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engagement.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the engagement row until the transaction ends.
func (r *GormEngagementRepository) FindByIDForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*engagement.Engagement, error) {
	var model models.OperacionModel
	if err := r.db.WithContext(ctx).
		Scopes(ownerScope(operacionesTable, ownerID), forUpdate).
		Where("operaciones.id = ?", id).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engagement.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists one page of engagements with their client names
func (r *GormEngagementRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter engagement.Filter) ([]engagement.Engagement, int64, error) {
	filter.Normalize()
	matches := func(db *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			db = db.Where("operaciones.estado = ?", *filter.Status)
		}
		if filter.ClientID != nil {
			db = db.Where("operaciones.cliente_id = ?", *filter.ClientID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.OperacionModel{}).
		Scopes(ownerScope(operacionesTable, ownerID), matches).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	engagements, err := r.findList(r.withClientName(ctx, ownerID).
		Scopes(matches, paginate(filter.PageSize, filter.Offset())).
		Order("operaciones.fecha_limite ASC").
		Order("operaciones.created_at DESC"))
	if err != nil {
		return nil, 0, err
	}
	return engagements, total, nil
}

// FindPendingDueBetween returns pending engagements due in [from, to]
func (r *GormEngagementRepository) FindPendingDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]engagement.Engagement, error) {
	return r.findList(r.withClientName(ctx, ownerID).
		Where("operaciones.estado = ?", engagement.StatusPending).
		Where("operaciones.fecha_limite BETWEEN ? AND ?", from, to).
		Order("operaciones.fecha_limite ASC"))
}

// FindPendingDueBy returns pending engagements due on or before date
func (r *GormEngagementRepository) FindPendingDueBy(ctx context.Context, ownerID uuid.UUID, date time.Time) ([]engagement.Engagement, error) {
	return r.findList(r.withClientName(ctx, ownerID).
		Where("operaciones.estado = ?", engagement.StatusPending).
		Where("operaciones.fecha_limite <= ?", date).
		Order("operaciones.fecha_limite ASC"))
}

// FindDueBetween returns engagements due in [from, to]
func (r *GormEngagementRepository) FindDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]engagement.Engagement, error) {
	return r.findList(r.withClientName(ctx, ownerID).
		Where("operaciones.fecha_limite BETWEEN ? AND ?", from, to).
		Order("operaciones.fecha_limite ASC"))
}

// FindCompletedBetween returns engagements completed in [from, to]
func (r *GormEngagementRepository) FindCompletedBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]engagement.Engagement, error) {
	return r.findList(r.withClientName(ctx, ownerID).
		Where("operaciones.estado = ?", engagement.StatusCompleted).
		Where("operaciones.fecha_completado BETWEEN ? AND ?", from, to).
		Order("operaciones.fecha_completado DESC").
		Order("operaciones.created_at DESC"))
}

// SumCompletedByMonth groups completed totals by completion month in one query.
func (r *GormEngagementRepository) SumCompletedByMonth(ctx context.Context, ownerID uuid.UUID, year int) (map[int]decimal.Decimal, error) {
	from, _ := shared.MonthBounds(year, 1)
	_, to := shared.MonthBounds(year, 12)
	month := monthOf(r.db, "fecha_completado")

	var rows []struct {
		Mes   int
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.OperacionModel{}).
		Select(month+" AS mes, COALESCE(SUM(monto_total), 0) AS total").
		Scopes(ownerScope(operacionesTable, ownerID)).
		Where("estado = ?", engagement.StatusCompleted).
		Where("fecha_completado BETWEEN ? AND ?", from, to).
		Group(month).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[int]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.Mes] = row.Total
	}
	return sums, nil
}

// Stats counts engagements and sums amounts per status in one query.
func (r *GormEngagementRepository) Stats(ctx context.Context, ownerID uuid.UUID, today time.Time) (*engagement.Stats, error) {
	var row struct {
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
	if err := r.db.WithContext(ctx).
		Model(&models.OperacionModel{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN estado = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN estado = ? THEN 1 ELSE 0 END), 0) AS in_progress,
			COALESCE(SUM(CASE WHEN estado = ? THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN estado = ? AND fecha_limite <= ? THEN 1 ELSE 0 END), 0) AS overdue,
			COALESCE(SUM(monto_total), 0) AS total_amount,
			COALESCE(SUM(CASE WHEN estado = ? THEN monto_total ELSE 0 END), 0) AS pending_amount,
			COALESCE(SUM(CASE WHEN estado = ? THEN monto_total ELSE 0 END), 0) AS in_progress_amount,
			COALESCE(SUM(CASE WHEN estado = ? THEN monto_total ELSE 0 END), 0) AS completed_amount`,
			engagement.StatusPending, engagement.StatusInProgress, engagement.StatusCompleted,
			engagement.StatusPending, today,
			engagement.StatusPending, engagement.StatusInProgress, engagement.StatusCompleted).
		Scopes(ownerScope(operacionesTable, ownerID)).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	stats := engagement.Stats(row)
	return &stats, nil
}

// CountRecurringInRange counts recurring engagements starting in [start, end]
func (r *GormEngagementRepository) CountRecurringInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OperacionModel{}).
		Scopes(ownerScope(operacionesTable, ownerID)).
		Where("es_mensualidad = ?", true).
		Where("fecha_inicio BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return count, err
}

// CountByClient counts engagements referencing a client
func (r *GormEngagementRepository) CountByClient(ctx context.Context, ownerID, clientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OperacionModel{}).
		Scopes(ownerScope(operacionesTable, ownerID)).
		Where("cliente_id = ?", clientID).
		Count(&count).Error
	return count, err
}

// FindRecurringWithZeroTotal returns recurring engagements billed at zero
func (r *GormEngagementRepository) FindRecurringWithZeroTotal(ctx context.Context, ownerID uuid.UUID) ([]engagement.Engagement, error) {
	return r.findList(r.withClientName(ctx, ownerID).
		Where("operaciones.es_mensualidad = ?", true).
		Where("operaciones.monto_total = ?", 0).
		Order("operaciones.fecha_inicio ASC"))
}

// InsertMany writes all engagements with a single multi-row INSERT.
// A duplicate (owner, client, start date) recurring row yields
// engagement.ErrDuplicateRecurring.
func (r *GormEngagementRepository) InsertMany(ctx context.Context, engagements []*engagement.Engagement) error {
	if len(engagements) == 0 {
		return nil
	}
	rows := make([]*models.OperacionModel, len(engagements))
	for i, e := range engagements {
		rows[i] = models.OperacionModelFromDomain(e)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return engagement.ErrDuplicateRecurring
		}
		return err
	}
	return nil
}

// Save creates or updates an engagement
func (r *GormEngagementRepository) Save(ctx context.Context, e *engagement.Engagement) error {
	return r.db.WithContext(ctx).Save(models.OperacionModelFromDomain(e)).Error
}

// DeleteForOwner deletes an engagement owned by ownerID
func (r *GormEngagementRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(ownerScope(operacionesTable, ownerID)).
		Delete(&models.OperacionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return engagement.ErrNotFound
	}
	return nil
}

// Ensure GormEngagementRepository implements engagement.Repository
var _ engagement.Repository = (*GormEngagementRepository)(nil)
