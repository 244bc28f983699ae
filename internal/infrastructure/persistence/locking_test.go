package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/estudio-contable/backend/internal/domain/engagement"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockEngagementRepository(t *testing.T) (*GormEngagementRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormEngagementRepository(gormDB), mock, mockDB
}

func TestGormEngagementRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("takes a row lock", func(t *testing.T) {
		repo, mock, mockDB := newMockEngagementRepository(t)
		defer mockDB.Close()

		owner, id := uuid.New(), uuid.New()
		rows := sqlmock.NewRows([]string{"id", "user_id", "cliente_id", "tipo", "estado", "honorarios", "monto_total", "monto_pagado"}).
			AddRow(id, owner, uuid.New(), "ASESORIA", "PENDIENTE", "100.00", "100.00", "0")

		mock.ExpectQuery(`SELECT \* FROM "operaciones" WHERE operaciones.user_id = \$1 AND operaciones.id = \$2 LIMIT \$3 FOR UPDATE`).
			WithArgs(owner, id, 1).
			WillReturnRows(rows)

		e, err := repo.FindByIDForUpdate(context.Background(), owner, id)
		require.NoError(t, err)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, engagement.StatusPending, e.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is not found", func(t *testing.T) {
		repo, mock, mockDB := newMockEngagementRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`FOR UPDATE`).WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByIDForUpdate(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, engagement.ErrNotFound)
	})
}
