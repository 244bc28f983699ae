package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const clientesTable = "clientes"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GormClientRepository implements client.Repository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) owned(ctx context.Context, ownerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ClienteModel{}).Scopes(ownerScope(clientesTable, ownerID))
}

func toClients(rows []models.ClienteModel) []client.Client {
	clients := make([]client.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients
}

// FindByIDForOwner finds a client by ID for a specific owner
func (r *GormClientRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*client.Client, error) {
	var model models.ClienteModel
	if err := r.owned(ctx, ownerID).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, client.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOwner lists clients newest first
func (r *GormClientRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, active *bool) ([]client.Client, error) {
	query := r.owned(ctx, ownerID)
	if active != nil {
		query = query.Where("activo = ?", *active)
	}
	var rows []models.ClienteModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toClients(rows), nil
}

// Search matches the folded query against search_key
func (r *GormClientRepository) Search(ctx context.Context, ownerID uuid.UUID, folded string) ([]client.Client, error) {
	var rows []models.ClienteModel
	if err := r.owned(ctx, ownerID).
		Where(`search_key LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(folded)+"%").
		Order("nombre ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toClients(rows), nil
}

// ExistsByCUIT checks whether any owner already registered the CUIT
func (r *GormClientRepository) ExistsByCUIT(ctx context.Context, cuit string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClienteModel{}).
		Where("cuit = ?", cuit).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindActiveRecurring returns the owner's active fixed clients. Inside a
// transaction on postgres the rows stay share-locked until commit, so a
// concurrent edit of a fee cannot interleave with a generation batch.
func (r *GormClientRepository) FindActiveRecurring(ctx context.Context, ownerID uuid.UUID) ([]engagement.RecurringClient, error) {
	var rows []models.ClienteModel
	if err := r.db.WithContext(ctx).
		Scopes(ownerScope(clientesTable, ownerID), forShare).
		Where("activo = ? AND es_cliente_fijo = ?", true, true).
		Order("nombre ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	clients := make([]engagement.RecurringClient, len(rows))
	for i, row := range rows {
		clients[i] = engagement.RecurringClient{ID: row.ID, Name: row.Name, Fee: row.MonthlyFee}
	}
	return clients, nil
}

// NamesByID resolves client names
func (r *GormClientRepository) NamesByID(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []struct {
		ID     uuid.UUID
		Nombre string
	}
	if err := r.owned(ctx, ownerID).
		Select("id, nombre").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Nombre
	}
	return names, nil
}

// Stats counts clients by flag
func (r *GormClientRepository) Stats(ctx context.Context, ownerID uuid.UUID) (*client.Stats, error) {
	var stats client.Stats
	if err := r.owned(ctx, ownerID).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN activo = ? THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN activo = ? THEN 1 ELSE 0 END), 0) AS inactive,
			COALESCE(SUM(CASE WHEN es_cliente_fijo = ? THEN 1 ELSE 0 END), 0) AS recurring`,
			true, false, true).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// Save creates or updates a client. The unique CUIT index backs the
// application-level check.
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	if err := r.db.WithContext(ctx).Save(models.ClienteModelFromDomain(c)).Error; err != nil {
		if isUniqueViolation(err) {
			return client.ErrDuplicateCUIT
		}
		return err
	}
	return nil
}

// DeleteForOwner deletes a client owned by ownerID
func (r *GormClientRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(ownerScope(clientesTable, ownerID)).
		Delete(&models.ClienteModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return client.ErrNotFound
	}
	return nil
}

// Ensure GormClientRepository implements client.Repository
var _ client.Repository = (*GormClientRepository)(nil)
