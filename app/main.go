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

	"github.com/lysyi3m/ims-sessions/app/api"
	"github.com/lysyi3m/ims-sessions/app/cfg"
	"github.com/lysyi3m/ims-sessions/app/database"
	"github.com/lysyi3m/ims-sessions/app/ims"
	"github.com/lysyi3m/ims-sessions/app/metrics"
	"github.com/lysyi3m/ims-sessions/app/sessions"
	"github.com/lysyi3m/ims-sessions/app/storage"
	"github.com/lysyi3m/ims-sessions/app/tasks"
)

const snapshotName = "ims"

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting IMS Sessions server", "version", appCfg.Version, "timezone", appCfg.Timezone, "cache_backend", appCfg.CacheBackend)

	store, closeStore, err := newSnapshotStore(appCfg)
	if err != nil {
		slog.Error("Failed to initialize snapshot store", "backend", appCfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	schema := sessions.DefaultSchema()
	if appCfg.SchemaFile != "" {
		schema, err = sessions.LoadSchema(appCfg.SchemaFile)
		if err != nil {
			slog.Error("Failed to load schema", "file", appCfg.SchemaFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Loaded feed schema", "file", appCfg.SchemaFile, "nodes", schema.Nodes)
	}

	m := metrics.New()

	httpClient := &http.Client{}
	fetcher := ims.NewFetcher(httpClient, appCfg.FeedURL, appCfg.UserAgent, appCfg.FetchTimeoutDuration())
	feedCache := ims.NewFeedCache(store, fetcher, ims.NewParser(), m, appCfg.CacheTTLDuration())

	extractor := sessions.NewExtractor(
		schema,
		sessions.NewDateNormalizer(appCfg.Location),
		sessions.NewLinkBuilder(appCfg.SecretariaURL),
	)
	service := sessions.NewService(feedCache, extractor, appCfg.MaxSessions)

	if appCfg.WarmInterval > 0 {
		scheduler := tasks.NewScheduler(feedCache, appCfg.WarmIntervalDuration(), appCfg.WorkerCount)
		scheduler.Start()
		defer scheduler.Stop()
		slog.Info("Cache warmer started", "interval", appCfg.WarmIntervalDuration().String(), "workers", appCfg.WorkerCount)
	}

	handler := api.NewHandler(service, feedCache, m, appCfg.ResponseMaxAge, appCfg.Version)
	server := api.NewServer(handler, m)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "feed_url", appCfg.FeedURL)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("IMS Sessions server shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// newSnapshotStore returns the configured store and a function releasing
// whatever it holds open.
func newSnapshotStore(appCfg *cfg.Cfg) (ims.SnapshotStore, func(), error) {
	switch appCfg.CacheBackend {
	case "sqlite":
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			return nil, nil, err
		}

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

		return database.NewSnapshotRepository(db, snapshotName), func() { db.Close() }, nil

	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := storage.NewS3Client(ctx, appCfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}

		return storage.NewS3Store(client, appCfg.S3Bucket, appCfg.S3Key), func() {}, nil

	default:
		store := storage.NewFileStore(appCfg.CacheFile)
		slog.Info("Snapshot file ready", "path", store.Path())

		return store, func() {}, nil
	}
}
