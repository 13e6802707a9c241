package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vyralflow/vyralflow/internal/agent"
	"github.com/vyralflow/vyralflow/internal/api"
	"github.com/vyralflow/vyralflow/internal/config"
	"github.com/vyralflow/vyralflow/internal/logger"
	"github.com/vyralflow/vyralflow/internal/orchestrator"
	"github.com/vyralflow/vyralflow/internal/provider"
	"github.com/vyralflow/vyralflow/internal/storage"
	"github.com/vyralflow/vyralflow/internal/store"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg := logger.NewDefault()
	logger.SetDefaultLogger(logg)

	campaignStore, err := store.New(&cfg.Database)
	if err != nil {
		logg.WithError(err).Fatal("Failed to initialize campaign store")
	}
	logg.WithField("driver", cfg.Database.Driver).Info("Campaign store ready")

	var archiver storage.Archiver
	if cfg.Archive.Enabled {
		s3Archiver, err := storage.NewS3Archiver(&cfg.Archive)
		if err != nil {
			logg.WithError(err).Fatal("Failed to initialize results archiver")
		}
		if err := s3Archiver.EnsureBucket(context.Background()); err != nil {
			logg.WithError(err).Fatal("Failed to ensure archive bucket")
		}
		archiver = s3Archiver
		logg.WithField("bucket", cfg.Archive.Bucket).Info("Results archiving enabled")
	}

	trendsClient := provider.NewTrendsClient(&provider.TrendsClientConfig{
		BaseURL:   cfg.Providers.Trends.BaseURL,
		UserAgent: cfg.Providers.Trends.UserAgent,
		Timeout:   cfg.Providers.Trends.Timeout,
	})
	contentClient := provider.NewContentClient(&provider.ContentClientConfig{
		Model:   cfg.Providers.Content.Model,
		APIKey:  cfg.Providers.Content.APIKey,
		BaseURL: cfg.Providers.Content.BaseURL,
		Timeout: cfg.Providers.Content.Timeout,
	})
	imagesClient := provider.NewImagesClient(&provider.ImagesClientConfig{
		BaseURL:   cfg.Providers.Images.BaseURL,
		AccessKey: cfg.Providers.Images.AccessKey,
		Timeout:   cfg.Providers.Images.Timeout,
	})

	agents := []agent.Agent{
		agent.NewTrendAnalyzer(trendsClient),
		agent.NewContentWriter(contentClient),
		agent.NewVisualDesigner(imagesClient),
		agent.NewCampaignScheduler(),
	}

	orch, err := orchestrator.New(campaignStore, agents, &cfg.Pipeline, archiver, logg)
	if err != nil {
		logg.WithError(err).Fatal("Failed to initialize orchestrator")
	}

	router := api.SetupRouter(orch, &cfg.Server, logg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logg.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.WithError(err).Error("Server forced to shutdown")
	}

	// Let in-flight pipelines drain before exiting.
	if err := orch.Shutdown(shutdownCtx); err != nil {
		logg.Warn("Exiting with campaigns still in flight")
	}

	logg.Info("Server exited")
}
