// Package screening serves LC audits to the outer surfaces. A Service owns
// the compiled engine built from the current rule catalog and swaps it
// atomically when the catalog changes, so audits in flight always finish
// against the catalog they started with.
package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/exportsafe/lcaudit/internal/audit"
	"github.com/exportsafe/lcaudit/internal/catalog"
	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/extraction"
	"github.com/exportsafe/lcaudit/internal/precheck"
	"github.com/exportsafe/lcaudit/internal/rules"
	"github.com/exportsafe/lcaudit/internal/scoring"
	"github.com/exportsafe/lcaudit/internal/screening/metrics"
)

var ErrDocumentTooLarge = errors.New("document too large")

const (
	defaultBatchConcurrency = 4
	defaultMaxDocumentBytes = 1 << 20
)

// Config holds the service settings that do not live in the catalog.
type Config struct {
	DefaultProfile      string
	DefaultJurisdiction string
	PresentationDays    int
	BatchConcurrency    int
	MaxDocumentBytes    int
}

// Request is one audit to run.
type Request struct {
	// ID is assigned when empty.
	ID            string `json:"id,omitempty"`
	LC            string `json:"lc"`
	Invoice       string `json:"invoice"`
	Profile       string `json:"profile,omitempty"`
	Jurisdiction  string `json:"jurisdiction,omitempty"`
	IncludeFields bool   `json:"include_fields,omitempty"`
}

// Result is the outcome of one audit. In a batch, an item rejected before
// it could be examined carries Error instead of Report.
type Result struct {
	ID       string              `json:"audit_id"`
	Report   *domain.AuditReport `json:"report,omitempty"`
	Error    string              `json:"error,omitempty"`
	Duration time.Duration       `json:"-"`
}

// engine is everything compiled from one catalog.
type engine struct {
	orch      *audit.Orchestrator
	corrector *extraction.Corrector
	catalog   catalog.Catalog
}

// Service runs audits against the current catalog.
type Service struct {
	cfg     Config
	engine  atomic.Pointer[engine]
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New compiles c and returns a ready service. logger and m may be nil.
func New(cfg Config, c catalog.Catalog, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = defaultBatchConcurrency
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = defaultMaxDocumentBytes
	}
	if _, err := scoring.Lookup(cfg.DefaultProfile); err != nil {
		return nil, fmt.Errorf("default profile: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Service{
		cfg:     cfg,
		logger:  logger.With("component", "screening"),
		metrics: m,
	}
	eng, err := s.build(c)
	if err != nil {
		return nil, err
	}
	if j := strings.TrimSpace(cfg.DefaultJurisdiction); j != "" && !eng.orch.HasJurisdiction(j) {
		return nil, fmt.Errorf("default jurisdiction: %w: %q", rules.ErrUnknownJurisdiction, j)
	}
	s.engine.Store(eng)
	return s, nil
}

// Audit examines req.Invoice against req.LC. It fails only when the request
// itself is unusable: an oversized document, an unknown profile or an
// unknown jurisdiction. Problems in the documents are in the report.
func (s *Service) Audit(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := s.checkSize("lc", req.LC); err != nil {
		return Result{}, err
	}
	if err := s.checkSize("invoice", req.Invoice); err != nil {
		return Result{}, err
	}

	eng := s.engine.Load()
	opts, err := s.options(eng, req)
	if err != nil {
		return Result{}, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	start := time.Now()
	report := eng.orch.Audit(req.LC, req.Invoice, opts)
	elapsed := time.Since(start)

	s.record(id, opts.Profile.Name, report, elapsed)
	return Result{ID: id, Report: &report, Duration: elapsed}, nil
}

// AuditBatch runs reqs concurrently, at most BatchConcurrency at a time, and
// returns one Result per request in input order. A request that Audit
// rejects yields a Result with Error set. The batch as a whole fails only
// when ctx is done.
func (s *Service) AuditBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}
	s.metrics.ObserveBatchSize(len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Audit(gctx, req)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			if err != nil {
				res = Result{ID: req.ID, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("audit batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit batch: %w", err)
	}

	s.logger.Info("batch complete", "items", len(reqs))
	return results, nil
}

// ValidateLC pre-checks an LC on its own with the current correction table.
func (s *Service) ValidateLC(text string) (precheck.Result, error) {
	if err := s.checkSize("lc", text); err != nil {
		return precheck.Result{}, err
	}
	return precheck.Validate(text, s.engine.Load().corrector), nil
}

// Reload compiles c and makes it the catalog for every later audit. On
// error the current catalog stays in place.
func (s *Service) Reload(c catalog.Catalog) error {
	eng, err := s.build(c)
	if err != nil {
		return err
	}
	if j := strings.TrimSpace(s.cfg.DefaultJurisdiction); j != "" && !eng.orch.HasJurisdiction(j) {
		return fmt.Errorf("catalog drops default jurisdiction %q", j)
	}
	s.engine.Store(eng)
	s.logger.Info("catalog reloaded",
		"corrections", len(eng.catalog.Corrections),
		"jurisdictions", eng.orch.Jurisdictions())
	return nil
}

// Catalog returns a copy of the catalog in use.
func (s *Service) Catalog() catalog.Catalog {
	return s.engine.Load().catalog.Snapshot()
}

// Jurisdictions lists the jurisdiction codes audits may name.
func (s *Service) Jurisdictions() []string {
	return s.engine.Load().orch.Jurisdictions()
}

// Rules lists the rule names in evaluation order.
func (s *Service) Rules() []string {
	return s.engine.Load().orch.Rules()
}

// --- helpers ---

func (s *Service) build(c catalog.Catalog) (*engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c = c.Snapshot()
	orch, err := audit.New(audit.Config{
		Rules: rules.Config{
			PresentationDays: s.cfg.PresentationDays,
			Jurisdictions:    c.Jurisdictions,
		},
		Corrections: c.Corrections,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	corrector, err := extraction.NewCorrector(c.Corrections)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return &engine{orch: orch, corrector: corrector, catalog: c}, nil
}

func (s *Service) options(eng *engine, req Request) (audit.Options, error) {
	name := req.Profile
	if strings.TrimSpace(name) == "" {
		name = s.cfg.DefaultProfile
	}
	profile, err := scoring.Lookup(name)
	if err != nil {
		return audit.Options{}, err
	}

	j := strings.TrimSpace(req.Jurisdiction)
	if j == "" {
		j = strings.TrimSpace(s.cfg.DefaultJurisdiction)
	}
	if j != "" && !eng.orch.HasJurisdiction(j) {
		return audit.Options{}, fmt.Errorf("%w: %q", rules.ErrUnknownJurisdiction, req.Jurisdiction)
	}

	return audit.Options{
		Profile:       profile,
		Jurisdiction:  j,
		IncludeFields: req.IncludeFields,
	}, nil
}

func (s *Service) checkSize(name, text string) error {
	if len(text) > s.cfg.MaxDocumentBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrDocumentTooLarge, name, len(text), s.cfg.MaxDocumentBytes)
	}
	return nil
}

func (s *Service) record(id, profile string, report domain.AuditReport, elapsed time.Duration) {
	s.metrics.IncrementAudit(string(report.Status), profile)
	s.metrics.ObserveAuditLatency(elapsed)
	s.metrics.ObserveRiskScore(report.RiskScore)

	for _, d := range report.Discrepancies {
		s.metrics.IncrementDiscrepancy(string(d.Category), d.Severity)
		if d.Category == domain.CategorySystem && d.Field == domain.FieldEngine {
			s.metrics.IncrementRuleFault(d.Rule)
			s.logger.Warn("rule fault", "audit_id", id, "rule", d.Rule, "error", d.Observed)
		}
	}

	s.logger.Info("audit complete",
		"audit_id", id,
		"status", report.Status,
		"risk_score", report.RiskScore,
		"profile", profile,
		"discrepancies", len(report.Discrepancies),
		"duration", elapsed)
}
