package router

import (
	"fmt"

	"github.com/crediario/backend/internal/infrastructure/logger"
	"github.com/crediario/backend/internal/interfaces/http/handler"
	"github.com/crediario/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig configures the middleware chain
type EngineConfig struct {
	ServiceName    string
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	TrustedProxies []string
	TracingEnabled bool

	// ProfilingEnabled labels profiles with the route and store
	ProfilingEnabled bool

	// Meter enables HTTP metrics when set
	Meter  metric.Meter
	Logger *zap.Logger
}

// Handlers are the handlers mounted by New
type Handlers struct {
	Operations *handler.CreditOperationHandler
	Accounts   *handler.CreditAccountHandler
	System     *handler.SystemHandler
}

// New builds the gin engine with the full middleware chain and every route
func New(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, fmt.Errorf("create http metrics: %w", err)
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		httpMetrics,
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.GET("/health", h.System.Health)

	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Logger = log
	NewRouter(engine,
		WithAPIVersion("v1"),
		WithAPIMiddleware(
			middleware.TenantMiddlewareWithConfig(tenantCfg),
			middleware.SpanAttributes(),
			middleware.Profiling(cfg.ProfilingEnabled),
		),
	).
		Register(SystemRoutes(h.System)).
		Register(CreditRoutes(h.Operations, h.Accounts)).
		Setup()

	return engine, nil
}

// SystemRoutes are reachable without X-Tenant-ID
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.GetSystemInfo)
	g.GET("/health", h.Health)
	return g
}

// CreditRoutes mounts the sale form and the account ledger under /credit
func CreditRoutes(ops *handler.CreditOperationHandler, accounts *handler.CreditAccountHandler) *DomainGroup {
	credit := NewDomainGroup("credit", "/credit")

	credit.Group("operations", "/operations").
		POST("", ops.Submit).
		POST("/stage", ops.StageItem)

	credit.Group("schedule", "/schedule").
		POST("/preview", ops.PreviewSchedule).
		GET("/options", ops.ScheduleOptions)

	credit.Group("customers", "/customers").
		GET("/resolve", ops.ResolveCustomer)

	credit.Group("accounts", "/accounts").
		GET("", accounts.List).
		GET("/summary", accounts.Summary).
		GET("/:id", accounts.Get).
		DELETE("/:id", accounts.Delete).
		GET("/:id/transactions", accounts.Transactions).
		POST("/:id/payments", accounts.RegisterPayment).
		POST("/:id/debts", accounts.RegisterDebt)

	return credit
}
