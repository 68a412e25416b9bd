// Package main is the entry point for the scanflow API server.
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

	"github.com/gin-gonic/gin"

	"scanflow/internal/domain/auth"
	"scanflow/internal/domain/deltaqueue"
	"scanflow/internal/domain/scanning"
	v1 "scanflow/internal/infrastructure/http/v1"
	"scanflow/internal/infrastructure/storage/postgres"
	"scanflow/internal/infrastructure/storage/postgres/queue_repo"
	"scanflow/internal/infrastructure/storage/postgres/scan_repo"
	"scanflow/pkg/logger"
)

const version = "0.3.0"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting scanflow server", "version", version, "env", cfg.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	go pool.LogStats(logger.WithLogger(ctx, log), cfg.PoolStatsInterval)

	txManager := postgres.NewTxManager(pool)
	if cfg.AutoMigrate {
		if err := txManager.Migrate(ctx); err != nil {
			log.Fatalw("failed to migrate database", "error", err)
		}
		log.Info("database schema applied")
	}

	// --- Repositories ---
	queueRepo := queue_repo.NewQueueRepo(txManager)
	lookup := scan_repo.NewLineLookup(txManager)
	sink := scan_repo.NewMutationSink(txManager, queueRepo)
	policies := scan_repo.NewPolicyRepo(txManager)

	journal, err := postgres.NewScanJournal(txManager, cfg.CompressThreshold)
	if err != nil {
		log.Fatalw("failed to create scan journal", "error", err)
	}

	// --- Services ---
	scanService := scanning.NewService(lookup, sink, policies, journal)
	merger := deltaqueue.NewMerger(queueRepo, txManager)
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	// --- Router ---
	if !cfg.development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := v1.NewRouter(v1.RouterConfig{
		Logger:   log.WithComponent("http"),
		Sessions: jwtService,
		Scanner:  scanService,
		Queue:    merger,
		Journal:  journal,
		DB:       txManager,
		Version:  version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
