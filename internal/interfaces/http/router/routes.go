package router

import (
	"time"

	"github.com/estudio-contable/backend/internal/infrastructure/logger"
	"github.com/estudio-contable/backend/internal/interfaces/http/handler"
	"github.com/estudio-contable/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP entry points mounted by NewEngine
type Handlers struct {
	Auth        *handler.AuthHandler
	Clients     *handler.ClientHandler
	Engagements *handler.EngagementHandler
	Reports     *handler.ReportHandler
	Health      *handler.HealthHandler
}

// EngineConfig selects the middleware stack
type EngineConfig struct {
	Logger         *zap.Logger
	JWT            middleware.JWTMiddlewareConfig
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Swagger        middleware.SwaggerConfig
	MaxBodySize    int64
	RequestTimeout time.Duration
	TrustedProxies []string

	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.RateLimiter

	// Observability. A zero ServiceName disables tracing and a nil Meter
	// disables HTTP metrics.
	ServiceName string
	Meter       metric.Meter
	Profiling   bool
}

// NewEngine builds the gin engine with the full middleware stack and all
// routes mounted
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			return nil, err
		}
	}

	engine.Use(middleware.RequestID())
	if cfg.ServiceName != "" {
		engine.Use(middleware.Tracing(cfg.ServiceName))
	}
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	metrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}
	engine.Use(metrics)
	if cfg.Profiling {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	jwt := middleware.JWTAuthMiddleware(cfg.JWT)

	if h.Health != nil {
		engine.GET("/health", h.Health.Live)
		engine.GET("/health/ready", h.Health.Ready)
	}
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(cfg.Swagger, jwt),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(jwt, middleware.SpanAttributes())
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	publicAuth := NewDomainGroup("auth", "/auth")
	if cfg.RateLimiter != nil {
		publicAuth.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	publicAuth.POST("/register", h.Auth.Register)
	publicAuth.POST("/login", h.Auth.Login)
	r.Public(publicAuth)

	r.Register(authRoutes(h.Auth)).
		Register(clientRoutes(h.Clients)).
		Register(engagementRoutes(h.Engagements, h.Reports))
	r.Setup()

	return engine, nil
}

func authRoutes(h *handler.AuthHandler) *DomainGroup {
	g := NewDomainGroup("auth", "/auth")
	g.GET("/profile", h.Profile)
	g.PATCH("/profile", h.UpdateProfile)
	g.POST("/logout", h.Logout)
	return g
}

func clientRoutes(h *handler.ClientHandler) *DomainGroup {
	g := NewDomainGroup("clientes", "/clientes")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/search", h.Search)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/toggle-activo", h.ToggleActive)
	return g
}

func engagementRoutes(h *handler.EngagementHandler, reports *handler.ReportHandler) *DomainGroup {
	g := NewDomainGroup("operaciones", "/operaciones")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/stats", h.Stats)
	g.GET("/proximos-vencimientos", h.Upcoming)
	g.GET("/vencidas", h.Overdue)
	g.GET("/mes/:mes/anio/:anio", h.ByMonth)
	g.POST("/generar-mensuales", h.GenerateMonthly)
	g.POST("/fix-montos-mensualidades", h.FixRecurringAmounts)
	g.GET("/generaciones", h.RecentRuns)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id/estado", h.ChangeStatus)
	g.PATCH("/:id/pago", h.RecordPayment)

	if reports != nil {
		rg := g.Group("reportes", "/reportes")
		rg.GET("/mes-completado/:mes/anio/:anio", reports.CompletedInMonth)
		rg.POST("/mes-completado/:mes/anio/:anio/export", reports.Export)
		rg.GET("/estadisticas-anuales/:anio", reports.AnnualStats)
		rg.GET("/descargas/*key", reports.Download)
	}
	return g
}
