package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appclient "github.com/estudio-contable/backend/internal/application/client"
	appeng "github.com/estudio-contable/backend/internal/application/engagement"
	appidentity "github.com/estudio-contable/backend/internal/application/identity"
	"github.com/estudio-contable/backend/internal/infrastructure/auth"
	"github.com/estudio-contable/backend/internal/infrastructure/cache"
	"github.com/estudio-contable/backend/internal/infrastructure/config"
	"github.com/estudio-contable/backend/internal/infrastructure/event"
	"github.com/estudio-contable/backend/internal/infrastructure/persistence"
	"github.com/estudio-contable/backend/internal/infrastructure/printing"
	"github.com/estudio-contable/backend/internal/infrastructure/storage"
	"github.com/estudio-contable/backend/internal/interfaces/http/handler"
	"github.com/estudio-contable/backend/internal/interfaces/http/middleware"
	"github.com/estudio-contable/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// DownloadBase is where LocalReportArchive links point in tests
const DownloadBase = "/api/v1/operaciones/reportes/descargas"

// App is the whole HTTP stack over an in-memory database
type App struct {
	Engine  *gin.Engine
	DB      *gorm.DB
	JWT     *auth.JWTService
	Archive *storage.LocalReportArchive
	Events  *RecordingEventHandler
	Billing *appeng.MonthlyBillingService
}

// NewApp wires repositories, services, handlers and middleware the way the
// server does, with in-process cache, event bus and archive.
func NewApp(t *testing.T) *App {
	t.Helper()
	db := NewSQLiteDB(t)

	clientRepo := persistence.NewGormClientRepository(db)
	engagementRepo := persistence.NewGormEngagementRepository(db)
	runRepo := persistence.NewGormGenerationRunRepository(db)
	userRepo := persistence.NewGormUserRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	store := cache.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	bus := event.NewInMemoryEventBus(nil)
	recorder := NewRecordingEventHandler()
	bus.Subscribe(recorder)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-32-characters-long",
		AccessTokenExpiration: time.Hour,
		Issuer:                "estudio-contable-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	archive, err := storage.NewLocalReportArchive(t.TempDir(), DownloadBase)
	require.NoError(t, err)

	engagementService := appeng.NewEngagementService(engagementRepo, clientRepo, txScope, nil)
	engagementService.SetIdempotencyStore(store)
	engagementService.SetEventPublisher(bus)

	billing := appeng.NewMonthlyBillingService(appeng.MonthlyBillingDeps{
		TxScope:   txScope,
		Repo:      engagementRepo,
		Runs:      runRepo,
		Owners:    userRepo,
		Locker:    store,
		Publisher: bus,
	})

	reports := appeng.NewReportService(engagementRepo, nil)
	reports.SetExporter(printing.NewReportRenderer(nil), archive, time.Hour)

	engine, err := router.NewEngine(router.EngineConfig{
		JWT: middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
		},
		CORS:        middleware.DefaultCORSConfig(),
		Security:    middleware.DefaultSecurityConfig(),
		MaxBodySize: 1 << 20,
	}, router.Handlers{
		Auth:        handler.NewAuthHandler(appidentity.NewAuthService(userRepo, jwtService, blacklist, nil)),
		Clients:     handler.NewClientHandler(appclient.NewClientService(clientRepo, engagementRepo, nil)),
		Engagements: handler.NewEngagementHandler(engagementService, billing),
		Reports:     handler.NewReportHandler(reports, archive),
		Health:      handler.NewHealthHandler(nil),
	})
	require.NoError(t, err)

	return &App{
		Engine:  engine,
		DB:      db,
		JWT:     jwtService,
		Archive: archive,
		Events:  recorder,
		Billing: billing,
	}
}

// Do performs a request. body is JSON encoded unless it is nil or a string.
func (a *App) Do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

// Register signs up a new account and returns its token and id
func (a *App) Register(t *testing.T, email string) (string, uuid.UUID) {
	t.Helper()
	w := a.Do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "secreto123",
		"nombre":   "Estudio " + email,
	})
	require.Equal(t, http.StatusCreated, w.Code, "register: %s", w.Body.String())
	result := DataAs[appidentity.AuthResult](t, w)
	return result.Token, result.User.ID
}
