package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/exportsafe/lcaudit/internal/screening"
)

// DefaultMaxBodyBytes bounds request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 32 << 20

// Options configures the router.
type Options struct {
	// Gatherer backs /metrics; nil uses the default Prometheus registry.
	Gatherer     prometheus.Gatherer
	MaxBodyBytes int64
	// MaxBatchItems caps one batch request; zero means 100.
	MaxBatchItems int
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(svc *screening.Service, store CatalogStore, logger *slog.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxBatchItems <= 0 {
		opts.MaxBatchItems = 100
	}

	h := &Handlers{
		svc:      svc,
		store:    store,
		logger:   logger.With("component", "api"),
		maxBody:  opts.MaxBodyBytes,
		maxBatch: opts.MaxBatchItems,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		// Audits.
		r.Post("/audit", h.Audit)
		r.Post("/audit/batch", h.AuditBatch)
		r.Post("/audit/demo", h.AuditDemo)

		// LC pre-check.
		r.Post("/lc/validate", h.ValidateLC)

		r.Get("/profiles", h.ListProfiles)

		// Rule catalog.
		r.Get("/catalog", h.GetCatalog)
		r.Put("/catalog/corrections", h.ReplaceCorrections)
		r.Put("/catalog/jurisdictions/{code}", h.UpsertJurisdiction)
		r.Delete("/catalog/jurisdictions/{code}", h.DeleteJurisdiction)
	})

	return r
}
