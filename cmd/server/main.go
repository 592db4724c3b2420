package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/exportsafe/lcaudit/internal/api"
	"github.com/exportsafe/lcaudit/internal/catalog"
	"github.com/exportsafe/lcaudit/internal/config"
	"github.com/exportsafe/lcaudit/internal/platform/httpserver"
	"github.com/exportsafe/lcaudit/internal/platform/logger"
	"github.com/exportsafe/lcaudit/internal/repository"
	"github.com/exportsafe/lcaudit/internal/screening"
	"github.com/exportsafe/lcaudit/internal/screening/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("initializing database", "path", cfg.DBPath)
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer db.Close()

	repo := repository.NewCatalogRepo(db)

	// Seed the catalog if DB is empty.
	empty, err := repo.IsEmpty()
	if err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	if empty {
		c, source, err := seedCatalog(cfg.CatalogSeedFile)
		if err != nil {
			return err
		}
		log.Info("database is empty, seeding catalog", "source", source)
		if err := repo.Seed(c, source); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	} else {
		source, _ := repo.Meta(repository.MetaSeedSource)
		log.Info("catalog already seeded, skipping seed", "source", source)
	}

	current, err := repo.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	svc, err := screening.New(screening.Config{
		DefaultProfile:      cfg.DefaultProfile,
		DefaultJurisdiction: cfg.DefaultJurisdiction,
		PresentationDays:    cfg.PresentationWindowDays,
		BatchConcurrency:    cfg.BatchConcurrency,
		MaxDocumentBytes:    cfg.MaxDocumentBytes,
	}, current, log, metrics.New(prometheus.DefaultRegisterer))
	if err != nil {
		return fmt.Errorf("create screening service: %w", err)
	}

	router := api.NewRouter(svc, repo, log, api.Options{
		Gatherer:     prometheus.DefaultGatherer,
		MaxBodyBytes: int64(cfg.MaxDocumentBytes)*2*100 + 1<<20,
	})
	srv := httpserver.New(cfg.Addr(), router)

	log.Info("LC audit server",
		"listen", "http://localhost"+cfg.Addr(),
		"api_base", "http://localhost"+cfg.Addr()+"/api/v1",
		"rules", svc.Rules(),
		"jurisdictions", svc.Jurisdictions(),
		"default_profile", cfg.DefaultProfile)
	for _, e := range []string{
		"GET    /health",
		"GET    /metrics",
		"POST   /api/v1/audit",
		"POST   /api/v1/audit/batch",
		"POST   /api/v1/audit/demo",
		"POST   /api/v1/lc/validate",
		"GET    /api/v1/profiles",
		"GET    /api/v1/catalog",
		"PUT    /api/v1/catalog/corrections",
		"PUT    /api/v1/catalog/jurisdictions/{code}",
		"DELETE /api/v1/catalog/jurisdictions/{code}",
	} {
		log.Info("endpoint", "route", e)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "grace", cfg.ShutdownGrace())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// seedCatalog returns the catalog to seed an empty database with: the seed
// file when one is configured, the built-in catalog otherwise.
func seedCatalog(path string) (catalog.Catalog, string, error) {
	if path == "" {
		return catalog.Default(), "builtin", nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return catalog.Catalog{}, "", fmt.Errorf("seed file %s: %w", path, err)
	}
	return c, path, nil
}
