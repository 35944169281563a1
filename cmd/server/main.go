package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meur/buildforge/internal/api"
	"github.com/meur/buildforge/internal/catalog"
	"github.com/meur/buildforge/internal/config"
	"github.com/meur/buildforge/internal/logger"
	"github.com/meur/buildforge/internal/metrics"
	"github.com/meur/buildforge/internal/sharecode"
	"github.com/meur/buildforge/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override the environment
	port := flag.Int("port", cfg.Port, "Server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	catalogPath := flag.String("catalog", cfg.CatalogPath, "Item catalog JSON to import on startup")
	flag.Parse()

	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		logger.DefaultServiceName,
		cfg.Version,
		cfg.Environment,
		cfg.IsDev(),
	))

	store, err := storage.New(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *catalogPath != "" {
		if err := importCatalog(ctx, store, *catalogPath, cfg.CatalogVersion); err != nil {
			return err
		}
	}

	cat, err := loadCatalog(ctx, store)
	if err != nil {
		return err
	}
	metrics.CatalogItems.Set(float64(cat.Len()))

	srv, err := api.New(api.Deps{
		Catalog:        cat,
		Store:          store,
		Codec:          sharecode.NewCodec(int64(cfg.MaxShareCodeBytes) * 8),
		TreeCacheSize:  cfg.TreeCacheSize,
		MaxCodeLength:  cfg.MaxShareCodeBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		return fmt.Errorf("failed to create api: %w", err)
	}
	srv.Router().Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(*port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("BuildForge API starting", "addr", httpServer.Addr, "db", *dbPath,
			"catalog_version", cat.Version(), "items", cat.Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func importCatalog(ctx context.Context, store *storage.Store, path, fallbackVersion string) error {
	file, err := catalog.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog %s: %w", path, err)
	}

	version := file.Version
	if version == "" {
		version = fallbackVersion
	}
	if err := store.ReplaceCatalog(ctx, version, file.Items); err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	slog.Info("Catalog imported", "path", path, "version", version, "items", len(file.Items))
	return nil
}

func loadCatalog(ctx context.Context, store *storage.Store) (*catalog.Catalog, error) {
	items, err := store.GetItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	version := ""
	info, err := store.CatalogInfo(ctx)
	switch {
	case err == nil:
		version = info.Version
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn("Catalog is empty, run cmd/seed or set CATALOG_PATH")
	default:
		return nil, fmt.Errorf("failed to read catalog info: %w", err)
	}

	return catalog.New(items, catalog.WithVersion(version), catalog.WithLogger(slog.Default())), nil
}
