// Package testutil provides shared helpers for HTTP level tests: an
// in-memory SQLite store with the production schema, the full gin engine
// wired over it, and assertions on the response envelope.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/estudio-contable/backend/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens a private in-memory database with every table and the
// partial unique index that guards monthly generation.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
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

// ContextWithTimeout returns a context cancelled at test cleanup
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
