// Server entrypoint: wires configuration, logging, persistence, the
// settlement services, and the HTTP API, then runs until interrupted.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appsettlement "github.com/amai2222/shipment-data-view-sub003/internal/application/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/cache"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/config"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/logger"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/persistence"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/scheduler"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/telemetry"
	"github.com/amai2222/shipment-data-view-sub003/internal/interfaces/http/handler"
	"github.com/amai2222/shipment-data-view-sub003/internal/interfaces/http/middleware"
	"github.com/amai2222/shipment-data-view-sub003/internal/interfaces/http/router"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("starting settlement engine",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shut down tracer provider", zap.Error(err))
		}
	}()

	gormLogLevel := gormlogger.Warn
	if cfg.IsProduction() {
		gormLogLevel = gormlogger.Error
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		return fmt.Errorf("failed to create idempotency store: %w", err)
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Warn("failed to close idempotency store", zap.Error(err))
		}
	}()

	waybillRepo := persistence.NewGormWaybillRepository(db.DB)
	requestRepo := persistence.NewGormSettlementRequestRepository(db.DB)

	settlementService := appsettlement.NewService(
		waybillRepo,
		requestRepo,
		idempotencyStore,
		shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		},
		log,
	)
	requestService := appsettlement.NewRequestService(requestRepo, waybillRepo, log)
	reconciliationService := appsettlement.NewReconciliationService(waybillRepo, log)

	reconciliationScheduler := scheduler.NewReconciliationScheduler(reconciliationService, log, cfg.Reconciliation)
	if err := reconciliationScheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reconciliation scheduler: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reconciliationScheduler.Stop(stopCtx); err != nil {
			log.Warn("failed to stop reconciliation scheduler", zap.Error(err))
		}
	}()

	engine := buildEngine(cfg, log)
	handler.NewHealthHandler(db).RegisterRoot(engine)

	router.NewRouter(engine).
		Register(handler.NewSettlementHandler(settlementService)).
		Register(handler.NewRequestHandler(requestService)).
		Register(handler.NewReconciliationHandler(reconciliationService)).
		Setup()

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}

func buildEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithOrigins(cfg.HTTP.CORSAllowOrigins),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
	)
	return engine
}
