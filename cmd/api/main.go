package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/imobcontrol/internal/ai"
	"github.com/dvloznov/imobcontrol/internal/api"
	"github.com/dvloznov/imobcontrol/internal/auth"
	"github.com/dvloznov/imobcontrol/internal/backup"
	"github.com/dvloznov/imobcontrol/internal/config"
	"github.com/dvloznov/imobcontrol/internal/domain"
	infraBQ "github.com/dvloznov/imobcontrol/internal/infra/bigquery"
	"github.com/dvloznov/imobcontrol/internal/jobs"
	"github.com/dvloznov/imobcontrol/internal/jobs/inmemory"
	"github.com/dvloznov/imobcontrol/internal/logger"
	"github.com/dvloznov/imobcontrol/internal/persistence"
	"github.com/dvloznov/imobcontrol/internal/portfolio"
	"github.com/dvloznov/imobcontrol/internal/report"
	"github.com/dvloznov/imobcontrol/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Parse command-line flags
	var (
		port   = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		bucket = flag.String("bucket", cfg.GCSBucket, "GCS bucket for statements and backups (or set GCS_BUCKET env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.NewFromConfig(cfg.LogLevel, cfg.LogFormat)
	ctx := logger.WithContext(context.Background(), log)

	// Portfolio persistence
	backend, err := persistence.Open(ctx, cfg.PersistenceOptions())
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("Failed to open storage backend")
	}
	defer backend.Close()
	log.Info().Str("backend", cfg.StorageBackend).Msg("Storage backend ready")

	// Statement blobs
	var blobs storage.Blobs
	if *bucket != "" {
		gcs, err := storage.NewGCS(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", *bucket).Msg("Failed to create GCS client")
		}
		defer gcs.Close()
		blobs = gcs
	} else {
		log.Warn().Msg("No GCS bucket configured - statements are kept in memory and cloud backups are disabled")
		blobs = storage.NewMemory()
	}

	// Automatic backups
	var sinks []backup.Sink
	if *bucket != "" {
		sinks = append(sinks, backup.NewBlobSink(blobs))
	}
	if cfg.BigQueryProjectID != "" {
		exporter, err := infraBQ.NewExporter(ctx, cfg.BigQueryProjectID, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery exporter")
		}
		defer exporter.Close()
		if err := exporter.EnsureTable(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to prepare BigQuery table")
		}
		sinks = append(sinks, infraBQ.NewSink(exporter))
	}
	var backups *backup.Manager
	if cfg.AutoBackup && len(sinks) > 0 {
		backups = backup.NewManager(cfg.AutoBackupDelay, sinks, log)
	}

	registry := portfolio.NewRegistry(backend, portfolio.RegistryOptions{
		BaseKey: cfg.StorageKey,
		PerUser: cfg.NamespacePerUser,
		Seed:    seedFunc(cfg),
		OnOpen: func(key string, s *portfolio.Store) {
			if backups != nil {
				s.Subscribe(backups.Attach(key).Notify)
			}
		},
	}, log)

	// AI gateway
	gateway, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create AI gateway")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.JobWorkers, jobStore, log)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := jobs.NewExtractHandler(blobs, gateway)
	go func() {
		log.Info().Int("workers", cfg.JobWorkers).Msg("Starting job workers")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	deps := api.Deps{
		Log:       log,
		Auth:      auth.New(cfg.Users),
		Stores:    registry,
		Jobs:      jobStore,
		Publisher: jobQueue,
		Blobs:     blobs,
		AI:        gateway,
		AIEnabled: gateway.Configured(),
		PDF:       &report.PDFRenderer{ChromePath: cfg.ChromeBin},
	}
	if backups != nil {
		deps.Backups = backups
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	// Write pending automatic backups
	if backups != nil {
		if err := backups.StopAll(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to flush automatic backups")
		}
	}

	log.Info().Msg("Server exited")
}

func seedFunc(cfg *config.Config) func() []domain.Property {
	if !cfg.SeedSampleData {
		return nil
	}
	return domain.SampleProperties
}
