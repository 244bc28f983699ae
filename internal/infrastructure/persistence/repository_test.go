package persistence

import (
	"context"
	"testing"
	"time"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	"github.com/estudio-contable/backend/internal/domain/client"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/estudio-contable/backend/internal/domain/identity"
	"github.com/estudio-contable/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with the full schema,
// including the partial unique index guarding monthly generation.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.UsuarioModel{},
		&models.ClienteModel{},
		&models.OperacionModel{},
		&models.GenerationRunModel{},
	))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX ux_operaciones_mensualidad ON operaciones (user_id, cliente_id, fecha_inicio) WHERE es_mensualidad`,
	).Error)
	return db
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func seedClient(t *testing.T, repo *GormClientRepository, owner uuid.UUID, name, cuit string, fee *decimal.Decimal) *client.Client {
	t.Helper()
	c, err := client.NewClient(owner, name, cuit, day(2024, 1, 10), "")
	require.NoError(t, err)
	if fee != nil {
		require.NoError(t, c.ConfigureBilling(true, fee))
	}
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func seedEngagement(t *testing.T, repo *GormEngagementRepository, owner, clientID uuid.UUID, fee string, start time.Time, due *time.Time) *engagement.Engagement {
	t.Helper()
	e, err := engagement.NewEngagement(owner, clientID, engagement.TypeAdvisory, decimal.RequireFromString(fee), start, due)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), e))
	return e
}

func TestGormClientRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormClientRepository(db)
	owner, other := uuid.New(), uuid.New()

	fee := decimal.NewFromInt(15000)
	fixed := seedClient(t, repo, owner, "José Núñez", "20-11111111-1", &fee)
	plain := seedClient(t, repo, owner, "Comercial Sur", "30-22222222-2", nil)
	seedClient(t, repo, other, "Ajeno SA", "30-33333333-3", nil)

	t.Run("scoped by owner", func(t *testing.T) {
		_, err := repo.FindByIDForOwner(ctx, other, fixed.ID)
		assert.ErrorIs(t, err, client.ErrNotFound)

		all, err := repo.FindAllForOwner(ctx, owner, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("search is accent and case insensitive", func(t *testing.T) {
		found, err := repo.Search(ctx, owner, client.Fold("NUNEZ"))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, fixed.ID, found[0].ID)
	})

	t.Run("cuit is unique across owners", func(t *testing.T) {
		exists, err := repo.ExistsByCUIT(ctx, "30-33333333-3")
		require.NoError(t, err)
		assert.True(t, exists)

		dup, err := client.NewClient(owner, "Duplicado", "30-33333333-3", day(2024, 2, 1), "")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, dup), client.ErrDuplicateCUIT)
	})

	t.Run("active recurring", func(t *testing.T) {
		recurring, err := repo.FindActiveRecurring(ctx, owner)
		require.NoError(t, err)
		require.Len(t, recurring, 1)
		assert.Equal(t, "José Núñez", recurring[0].Name)
		require.NotNil(t, recurring[0].Fee)
		assert.True(t, recurring[0].Fee.Equal(fee))
	})

	t.Run("stats and names", func(t *testing.T) {
		plain.ToggleActive()
		require.NoError(t, repo.Save(ctx, plain))

		stats, err := repo.Stats(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, client.Stats{Total: 2, Active: 1, Inactive: 1, Recurring: 1}, *stats)

		names, err := repo.NamesByID(ctx, owner, []uuid.UUID{fixed.ID, plain.ID})
		require.NoError(t, err)
		assert.Equal(t, "Comercial Sur", names[plain.ID])
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteForOwner(ctx, other, plain.ID), client.ErrNotFound)
		require.NoError(t, repo.DeleteForOwner(ctx, owner, plain.ID))
	})
}

func TestGormEngagementRepository_Queries(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clients := NewGormClientRepository(db)
	repo := NewGormEngagementRepository(db)
	owner := uuid.New()
	c := seedClient(t, clients, owner, "Estudio Norte", "20-44444444-4", nil)

	today := day(2025, 3, 10)
	overdue := seedEngagement(t, repo, owner, c.ID, "1000", day(2025, 3, 1), ptr(day(2025, 3, 5)))
	soon := seedEngagement(t, repo, owner, c.ID, "2000", day(2025, 3, 1), ptr(day(2025, 3, 14)))
	done := seedEngagement(t, repo, owner, c.ID, "3000", day(2025, 2, 1), nil)
	done.MarkCompleted()
	done.CompletedOn = ptr(day(2025, 2, 20))
	require.NoError(t, repo.Save(ctx, done))

	t.Run("joins client name", func(t *testing.T) {
		got, err := repo.FindByIDForOwner(ctx, owner, soon.ID)
		require.NoError(t, err)
		assert.Equal(t, "Estudio Norte", got.ClientName)
		assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("list with filter and paging", func(t *testing.T) {
		filter := engagement.Filter{Status: ptr(engagement.StatusPending)}
		filter.Page, filter.PageSize = 1, 1
		items, total, err := repo.FindAllForOwner(ctx, owner, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, items, 1)
	})

	t.Run("upcoming and overdue", func(t *testing.T) {
		upcoming, err := repo.FindPendingDueBetween(ctx, owner, today, today.AddDate(0, 0, 7))
		require.NoError(t, err)
		require.Len(t, upcoming, 1)
		assert.Equal(t, soon.ID, upcoming[0].ID)

		late, err := repo.FindPendingDueBy(ctx, owner, today)
		require.NoError(t, err)
		require.Len(t, late, 1)
		assert.Equal(t, overdue.ID, late[0].ID)
	})

	t.Run("completed by month", func(t *testing.T) {
		from, to := day(2025, 2, 1), day(2025, 2, 28)
		completed, err := repo.FindCompletedBetween(ctx, owner, from, to)
		require.NoError(t, err)
		require.Len(t, completed, 1)

		sums, err := repo.SumCompletedByMonth(ctx, owner, 2025)
		require.NoError(t, err)
		assert.True(t, sums[2].Equal(decimal.NewFromInt(3000)))
		assert.NotContains(t, sums, 3)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.Stats(ctx, owner, today)
		require.NoError(t, err)
		assert.EqualValues(t, 3, stats.Total)
		assert.EqualValues(t, 2, stats.Pending)
		assert.EqualValues(t, 1, stats.Completed)
		assert.EqualValues(t, 1, stats.Overdue)
		assert.True(t, stats.PendingAmount.Equal(decimal.NewFromInt(3000)))
		assert.True(t, stats.TotalAmount.Equal(decimal.NewFromInt(6000)))
	})

	t.Run("count by client and delete", func(t *testing.T) {
		n, err := repo.CountByClient(ctx, owner, c.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		require.NoError(t, repo.DeleteForOwner(ctx, owner, overdue.ID))
		assert.ErrorIs(t, repo.DeleteForOwner(ctx, owner, overdue.ID), engagement.ErrNotFound)
	})
}

func TestGormEngagementRepository_RecurringBatch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	clients := NewGormClientRepository(db)
	repo := NewGormEngagementRepository(db)
	owner := uuid.New()
	billingDay := day(2025, 4, 1)

	var batch []*engagement.Engagement
	for i, cuit := range []string{"20-55555555-5", "20-66666666-6"} {
		fee := decimal.NewFromInt(int64(1000 * i))
		c := seedClient(t, clients, owner, "Fijo "+cuit, cuit, nil)
		e, err := engagement.NewRecurringEngagement(owner, c.ID, fee, billingDay)
		require.NoError(t, err)
		batch = append(batch, e)
	}

	require.NoError(t, repo.InsertMany(ctx, batch))

	count, err := repo.CountRecurringInRange(ctx, owner, billingDay, billingDay)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	zero, err := repo.FindRecurringWithZeroTotal(ctx, owner)
	require.NoError(t, err)
	require.Len(t, zero, 1)
	assert.Equal(t, "Mensualidad 1/4/2025", zero[0].Description)

	again, err := engagement.NewRecurringEngagement(owner, batch[0].ClientID, decimal.NewFromInt(10), billingDay)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.InsertMany(ctx, []*engagement.Engagement{again}), engagement.ErrDuplicateRecurring)
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	owner := uuid.New()

	c, err := client.NewClient(owner, "Transaccional", "20-77777777-7", day(2024, 5, 1), "")
	require.NoError(t, err)

	boom := assert.AnError
	err = scope.Execute(ctx, func(repos appeng.TransactionalRepositories) error {
		require.NoError(t, repos.Clients().Save(ctx, c))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormClientRepository(db).FindByIDForOwner(ctx, owner, c.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestGormGenerationRunRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormGenerationRunRepository(db)
	owner := uuid.New()
	clientID := uuid.New()

	run := engagement.NewGenerationRun(owner, day(2025, 5, 1), engagement.TriggerCron,
		[]engagement.GeneratedClient{{ID: clientID, Name: "Fijo"}},
		[]engagement.DataQualityWarning{{ClientID: clientID, ClientName: "Fijo", Reason: "sin monto"}})
	require.NoError(t, repo.Save(ctx, run))

	runs, err := repo.FindRecentForOwner(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, engagement.TriggerCron, runs[0].Trigger)
	require.Len(t, runs[0].Clients, 1)
	assert.Equal(t, clientID, runs[0].Clients[0].ID)
	require.Len(t, runs[0].Warnings, 1)
}

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)

	u, err := identity.NewUser("Ana@Example.com", "secreto", "Ana")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, u))

	found, err := repo.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)
	assert.True(t, found.VerifyPassword("secreto"))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	dup, err := identity.NewUser("ana@example.com", "secreto", "Otra")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), identity.ErrEmailTaken)

	ids, err := repo.FindActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{u.ID}, ids)
}

func ptr[T any](v T) *T {
	return &v
}
