package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sewasangat/import-service/internal/core/domain"
	"github.com/sewasangat/import-service/internal/core/services/importer"
	"github.com/sewasangat/import-service/internal/infrastructure/cache"
	"github.com/sewasangat/import-service/internal/infrastructure/database"
	"github.com/sewasangat/import-service/internal/infrastructure/database/repositories"
	"github.com/sewasangat/import-service/internal/infrastructure/parsers"
	"github.com/sewasangat/import-service/internal/infrastructure/queue"
	httpapi "github.com/sewasangat/import-service/internal/interfaces/http"
	"github.com/sewasangat/import-service/internal/pkg/config"
	"github.com/sewasangat/import-service/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Initialize(cfg.Environment)
	cfg.LogConfig()

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&domain.Sewadar{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	redisCache, err := cache.NewRedisCache(&cfg.Cache, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisCache.Close()

	repo := repositories.NewSewadarRepository(db.DB, logger.NewServiceLogger("sewadar-repository"))
	jobStore := cache.NewRedisJobStore(redisCache, cfg.Import.JobRetention)
	allocator := importer.NewAllocator(repo, redisCache)

	importerCfg := importer.Config{
		ChunkSize:  cfg.Import.ChunkSize,
		ChunkDelay: cfg.Import.ChunkDelay,
		MaxErrors:  cfg.Import.MaxErrors,
	}

	var opts []importer.Option
	var dispatcher *queue.Dispatcher
	if cfg.Queue.Enabled {
		dispatcher = queue.NewDispatcher(&cfg.Queue, logger.NewServiceLogger("queue"))
		defer dispatcher.Close()
		opts = append(opts, importer.WithDispatcher(dispatcher))
	}

	service := importer.NewService(repo, jobStore, importerCfg, logger.NewServiceLogger("importer"), opts...)

	var worker *queue.Worker
	if cfg.Queue.Enabled {
		worker = queue.NewWorker(&cfg.Queue, service, logger.NewServiceLogger("worker"))
		go func() {
			if err := worker.Start(); err != nil {
				log.Error("worker stopped", "error", err)
			}
		}()
	}

	server := httpapi.NewServer(
		service,
		parsers.NewParserFactory(nil),
		allocator,
		map[string]httpapi.HealthChecker{
			"database": db,
			"redis":    redisCache,
		},
		logger.NewServiceLogger("http"),
	)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if worker != nil {
		worker.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
