package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	clientapp "github.com/estudio-contable/backend/internal/application/client"
	engagementapp "github.com/estudio-contable/backend/internal/application/engagement"
	identityapp "github.com/estudio-contable/backend/internal/application/identity"
	"github.com/estudio-contable/backend/internal/domain/shared"
	"github.com/estudio-contable/backend/internal/infrastructure/auth"
	"github.com/estudio-contable/backend/internal/infrastructure/cache"
	"github.com/estudio-contable/backend/internal/infrastructure/config"
	"github.com/estudio-contable/backend/internal/infrastructure/event"
	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/estudio-contable/backend/internal/infrastructure/persistence"
	"github.com/estudio-contable/backend/internal/infrastructure/printing"
	"github.com/estudio-contable/backend/internal/infrastructure/scheduler"
	"github.com/estudio-contable/backend/internal/infrastructure/storage"
	"github.com/estudio-contable/backend/internal/infrastructure/telemetry"
	"github.com/estudio-contable/backend/internal/interfaces/http/handler"
	"github.com/estudio-contable/backend/internal/interfaces/http/middleware"
	"github.com/estudio-contable/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/estudio-contable/backend/docs"
)

//	@title			Estudio Contable API
//	@version		1.0
//	@description	Registro de clientes y operaciones de un estudio contable: honorarios, pagos y mensualidades.

//	@contact.name	Soporte
//	@contact.email	soporte@estudio-contable.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// downloadBase is where local report links point; it matches the
// /operaciones/reportes/descargas route.
const downloadBase = "/api/v1/operaciones/reportes/descargas"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	bootLog, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the application logger can tee into the collector
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log := bootLog
	if logProvider.IsEnabled() {
		level, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			level = zapcore.InfoLevel
		}
		log, err = logger.New(logger.FromAppConfig(cfg.Log), logProvider.Core(cfg.Telemetry.ServiceName, level))
		if err != nil {
			bootLog.Fatal("Failed to attach log export", zap.Error(err))
		}
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting Estudio Contable backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Timezone),
	)

	if _, err := shared.LoadBusinessLocation(cfg.App.Timezone); err != nil {
		log.Fatal("Invalid business timezone", zap.Error(err))
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	var meter metric.Meter
	if meterProvider.IsEnabled() {
		meter = meterProvider.Meter(cfg.Telemetry.ServiceName)
	}

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.ProfilingEnabled {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if _, err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, meter, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Payment keys and generation locks; Redis when configured
	store, redisClient, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create coordination store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityLogHandler(log))

	// Report archive: S3 when enabled, otherwise a directory served by the API
	var (
		archive engagementapp.ReportArchive
		files   handler.ReportFiles
	)
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3ReportArchive(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			log.Fatal("Failed to create S3 report archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Report bucket unavailable", zap.String("bucket", s3Archive.Bucket()), zap.Error(err))
		}
		archive = s3Archive
	} else {
		local, err := storage.NewLocalReportArchive(cfg.Storage.LocalDir, downloadBase)
		if err != nil {
			log.Fatal("Failed to create local report archive", zap.Error(err))
		}
		archive = local
		files = local
	}

	var pdf printing.HTMLToPDF
	if cfg.Export.PDFEnabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfig{
			Timeout:   cfg.Export.RenderTimeout,
			RemoteURL: cfg.Export.ChromeRemoteURL,
			NoSandbox: true,
			Logger:    log,
		})
		defer func() { _ = chrome.Close() }()
		pdf = chrome
	}

	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	engagementRepo := persistence.NewGormEngagementRepository(db.DB)
	runRepo := persistence.NewGormGenerationRunRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	var businessMetrics *telemetry.BusinessMetrics
	if meter != nil {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:    meter,
			Logger:   log,
			Provider: telemetry.NewGormLedgerSnapshotProvider(db.DB),
			Today:    shared.Today,
		})
		if err != nil {
			log.Fatal("Failed to register business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
		defer businessMetrics.Stop()
	}

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	clientService := clientapp.NewClientService(clientRepo, engagementRepo, log)

	engagementService := engagementapp.NewEngagementService(engagementRepo, clientRepo, txScope, log)
	engagementService.SetIdempotencyStore(store)
	engagementService.SetEventPublisher(eventBus)

	billingDeps := engagementapp.MonthlyBillingDeps{
		TxScope:   txScope,
		Repo:      engagementRepo,
		Runs:      runRepo,
		Owners:    userRepo,
		Locker:    store,
		Publisher: eventBus,
		Logger:    log,
	}
	if businessMetrics != nil {
		engagementService.SetMetrics(businessMetrics)
		billingDeps.Metrics = businessMetrics
	}
	billingService := engagementapp.NewMonthlyBillingService(billingDeps)

	reportService := engagementapp.NewReportService(engagementRepo, log)
	reportService.SetExporter(printing.NewReportRenderer(pdf), archive, cfg.Storage.PresignExpiry)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var billingTrigger *scheduler.MonthlyBillingTrigger
	if cfg.Scheduler.Enabled {
		billingTrigger, err = scheduler.NewMonthlyBillingTrigger(scheduler.TriggerConfigFrom(cfg.Scheduler), billingService, log)
		if err != nil {
			log.Fatal("Failed to create monthly billing trigger", zap.Error(err))
		}
		if businessMetrics != nil {
			billingTrigger.SetRecorder(businessMetrics)
		}
		if err := billingTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start monthly billing trigger", zap.Error(err))
		}
	}

	middleware.SetupValidator()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go rateLimiter.Run(ctx)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	checks := map[string]handler.Pinger{
		"database": handler.PingerFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if redisClient != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	serviceName := ""
	if tracerProvider.IsEnabled() {
		serviceName = cfg.Telemetry.ServiceName
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		JWT: middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		},
		CORS:     cors,
		Security: security,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		RateLimiter:    rateLimiter,
		ServiceName:    serviceName,
		Meter:          meter,
		Profiling:      cfg.Telemetry.ProfilingEnabled,
	}, router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Clients:     handler.NewClientHandler(clientService),
		Engagements: handler.NewEngagementHandler(engagementService, billingService),
		Reports:     handler.NewReportHandler(reportService, files),
		Health:      handler.NewHealthHandler(checks),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if billingTrigger != nil {
		if err := billingTrigger.Stop(shutdownCtx); err != nil {
			log.Error("Monthly billing trigger did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus did not stop cleanly", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler did not stop cleanly", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"traces":  tracerProvider.Shutdown,
		"metrics": meterProvider.Shutdown,
		"logs":    logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("Telemetry shutdown failed", zap.String("signal", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
