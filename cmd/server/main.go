// Package main is the entry point for the jobquote API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobquote/internal/config"
	corenumerator "jobquote/internal/core/numerator"
	"jobquote/internal/core/tx"
	"jobquote/internal/domain/audit"
	"jobquote/internal/domain/auth"
	"jobquote/internal/domain/costing"
	"jobquote/internal/domain/quotation"
	"jobquote/internal/domain/quoting"
	"jobquote/internal/domain/reports"
	"jobquote/internal/domain/workflow"
	v1 "jobquote/internal/infrastructure/http/v1"
	"jobquote/internal/infrastructure/http/v1/handlers"
	"jobquote/internal/infrastructure/numerator"
	"jobquote/internal/infrastructure/storage/memory"
	"jobquote/internal/infrastructure/storage/postgres"
	"jobquote/internal/infrastructure/storage/postgres/migrations"
	"jobquote/internal/infrastructure/storage/postgres/quotation_repo"
	"jobquote/internal/infrastructure/storage/postgres/report_repo"
	"jobquote/pkg/logger"
)

// backend bundles the storage adapters behind the domain ports.
type backend struct {
	repo       quotation.Repository
	refData    quotation.ReferenceData
	auditStore audit.Store
	reports    reports.Repository
	txManager  tx.Manager
	numerator  corenumerator.Generator
	readiness  handlers.ReadinessChecker
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting jobquote server", "storage", cfg.Storage, "env", cfg.Environment)

	store, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "storage", cfg.Storage, "error", err)
	}
	defer store.close()

	authz, err := cfg.Authorizer()
	if err != nil {
		log.Fatalw("failed to compile capability policies", "error", err)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Secret(),
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.JWTTokenTTL,
	})

	// --- Domain services ---
	auditWriter := audit.NewWriter(store.auditStore)
	recalculator := costing.NewRecalculator(store.repo, store.txManager)
	quotingService := quoting.NewService(
		store.repo,
		store.refData,
		recalculator,
		auditWriter,
		store.numerator,
		store.txManager,
		quoting.Config{NumberPrefix: cfg.QuoteNumberPrefix, DefaultCurrency: cfg.DefaultCurrency},
	)
	workflowService := workflow.NewService(store.repo, auditWriter, store.txManager, authz)
	reportsService := reports.NewService(store.reports)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		Authorizer:   authz,
		Quoting:      quotingService,
		Recalculator: recalculator,
		Workflow:     workflowService,
		Reports:      reportsService,
		Readiness:    store.readiness,
		Development:  cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.Storage == config.StorageMemory {
		store := memory.NewStore()
		return &backend{
			repo:       store.Quotations(),
			refData:    store.ReferenceData(),
			auditStore: store.Audit(),
			reports:    store.Reports(),
			txManager:  store.TxManager(),
			numerator:  numerator.NewCounter(),
			close:      func() {},
		}, nil
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		if err := migrations.Up(ctx, pool.Pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	txManager := postgres.NewTxManager(pool)
	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info(ctx, "database connection established",
		"max_conns", poolCfg.MaxConns,
		"migrated", cfg.MigrateOnStart)

	return &backend{
		repo:       quotation_repo.New(txManager),
		refData:    quotation_repo.NewReferenceData(txManager),
		auditStore: auditStore,
		reports:    report_repo.NewReportRepo(txManager),
		txManager:  txManager,
		numerator:  numerator.New(txManager),
		readiness:  pool,
		close:      pool.Close,
	}, nil
}
