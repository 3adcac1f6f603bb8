// Command server runs the crediário HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	creditapp "github.com/crediario/backend/internal/application/credit"
	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/crediario/backend/internal/infrastructure/cache"
	"github.com/crediario/backend/internal/infrastructure/config"
	"github.com/crediario/backend/internal/infrastructure/event"
	"github.com/crediario/backend/internal/infrastructure/logger"
	"github.com/crediario/backend/internal/infrastructure/persistence"
	"github.com/crediario/backend/internal/infrastructure/telemetry"
	"github.com/crediario/backend/internal/interfaces/http/handler"
	"github.com/crediario/backend/internal/interfaces/http/middleware"
	"github.com/crediario/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting crediário",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdown(log, "tracer provider", tracer.Shutdown)

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdown(log, "logger provider", logs.Shutdown)
	log = logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:              cfg.Profiling.Enabled,
		ServerAddress:        cfg.Profiling.ServerAddress,
		ApplicationName:      cfg.Profiling.ApplicationName,
		BasicAuthUser:        cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:    cfg.Profiling.BasicAuthPassword,
		MutexProfileFraction: cfg.Profiling.MutexProfileFraction,
		BlockProfileRate:     cfg.Profiling.BlockProfileRate,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Profiling.Enabled && cfg.Profiling.SpanProfiles {
		tracer.EnableSpanProfiles()
	}

	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdown(log, "meter provider", meters.Shutdown)

	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		return err
	}

	storeOpts := []cache.IdempotencyStoreFactoryOption{
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	}
	if cfg.Redis.BreakerFailures > 0 {
		storeOpts = append(storeOpts, cache.WithCircuitBreaker(cache.BreakerConfig{
			ConsecutiveFailures: uint32(cfg.Redis.BreakerFailures),
			Timeout:             cfg.Redis.BreakerTimeout,
		}))
	}
	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis, storeOpts...).Create(cfg.Credit.IdempotencyBackend)
	if err != nil {
		return err
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		creditapp.NewAuditHandler(log),
		idempotency,
		shared.IdempotencyConfig{TTL: cfg.Credit.IdempotencyTTL, Enabled: true},
		log,
	))
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer shutdown(log, "event bus", eventBus.Stop)

	var meter metric.Meter
	var creditMetrics creditapp.Metrics
	if cfg.Telemetry.MetricsEnabled {
		meter = meters.Meter("crediario")
		m, err := telemetry.NewCreditMetrics(meter)
		if err != nil {
			return err
		}
		creditMetrics = m
	}

	accounts := persistence.NewGormCreditAccountRepository(db.DB)
	transactions := persistence.NewGormCreditTransactionRepository(db.DB)
	customers := persistence.NewGormCustomerRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB,
		persistence.WithAtomicStockDecrement(cfg.Credit.AtomicStockDecrement))
	cashFlow := persistence.NewGormCashFlowRepository(db.DB)

	ledger := creditapp.NewLedgerService(accounts, transactions, eventBus, creditMetrics, log,
		creditapp.WithTransactionManager(persistence.NewGormTransactionManager(db.DB)))
	resolver := credit.NewCustomerResolver(accounts, customers)
	form := creditapp.NewFormService(products, resolver)
	operations := creditapp.NewDebtOperationService(
		ledger, resolver, customers, products, accounts, transactions, cashFlow, log,
		creditapp.WithIdempotencyStore(idempotency),
		creditapp.WithOperationMetrics(creditMetrics),
		creditapp.WithOperationConfig(creditapp.OperationConfig{
			CashFlowCategory: cfg.Credit.CashFlowCategory,
			PaymentMethod:    cfg.Credit.PaymentMethod,
			IdempotencyTTL:   cfg.Credit.IdempotencyTTL,
		}),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.New(router.EngineConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		},
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: profiler.IsEnabled(),
		Meter:            meter,
		Logger:           log,
	}, router.Handlers{
		Operations: handler.NewCreditOperationHandler(operations, form),
		Accounts:   handler.NewCreditAccountHandler(ledger),
		System:     handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, db),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case <-quit:
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}
