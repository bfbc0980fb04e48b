package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/syncpress/app/api"
	"github.com/avelichko/syncpress/app/cfg"
	"github.com/avelichko/syncpress/app/database"
	"github.com/avelichko/syncpress/app/imports"
	"github.com/avelichko/syncpress/app/publish"
	"github.com/avelichko/syncpress/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting SyncPress", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	docs := database.NewDocumentRepository(db, appCfg.BaseUrl)
	assets := database.NewAssetRepository(db, appCfg.MediaDir, appCfg.BaseUrl)
	categories := database.NewCategoryRepository(db)
	tags := database.NewTagRepository(db)
	authors := database.NewAuthorRepository(db)
	settings := database.NewSettingRepository(db)
	runs := database.NewRunRepository(db)

	importCfg := imports.NewSettingsStore(settings)
	if err := importCfg.SeedFromFile(appCfg.SettingsFile); err != nil {
		slog.Error("Failed to seed settings", "file", appCfg.SettingsFile, "error", err)
		os.Exit(1)
	}

	if err := ensureSecretToken(settings); err != nil {
		slog.Error("Failed to initialize secret token", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{}

	scanner := imports.NewScanner(appCfg.ImageOrigin)
	resolver := imports.NewResolver(assets, httpClient, appCfg.UserAgent, time.Duration(appCfg.FetchTimeout)*time.Second)
	rewriter := imports.NewRewriter(scanner, resolver, assets)
	trigger := imports.NewTrigger(docs, importCfg, rewriter)
	coordinator := imports.NewCoordinator(docs, runs, importCfg, rewriter,
		appCfg.BatchSize, time.Duration(appCfg.TickDelay)*time.Second)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(coordinator, trigger)
	scheduler.Start()
	defer scheduler.Stop()

	coordinator.SetScheduler(tasks.NewImportTickScheduler(scheduler, coordinator))
	trigger.SetScheduler(tasks.NewDocumentScheduler(scheduler, trigger))

	ingestor := publish.NewIngestor(docs, categories, tags, authors, assets, trigger)
	feedImporter := publish.NewFeedImporter(ingestor, httpClient, appCfg.UserAgent)

	handler := api.NewHandler(docs, categories, tags, authors, settings, ingestor,
		feedImporter, coordinator, trigger, resolver, importCfg, appCfg.BatchSize)
	engine := api.NewServer(handler, appCfg.APIAccessKey, appCfg.MediaDir)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// ensureSecretToken generates the per-install secret on first startup.
func ensureSecretToken(settings database.SettingRepository) error {
	has, err := settings.Has("secret_token")
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	return settings.Set("secret_token", uuid.NewString())
}
