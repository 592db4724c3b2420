package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/exportsafe/lcaudit/internal/catalog"
	"github.com/exportsafe/lcaudit/internal/config"
	"github.com/exportsafe/lcaudit/internal/platform/logger"
	"github.com/exportsafe/lcaudit/internal/screening"
)

// Returned by --strict runs so the exit status reflects the outcome.
var (
	errAuditFailed = errors.New("audit failed")
	errDraftIssues = errors.New("lc draft has critical issues")
)

var rootCmd = newRootCmd()

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	catalog   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "lcaudit",
		Short: "Audit commercial invoices against letters of credit (UCP 600)",
		Long: `lcaudit compares a commercial invoice with the letter of credit it is
drawn under and reports every discrepancy a document checker would raise:
amounts and tolerance, goods description, dates, ports, Incoterms, parties
and jurisdiction-specific regulatory fields.

Settings are read from the environment (and .env) like the server; the
flags below override them.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&g.catalog, "catalog", "", "YAML rule catalog (default: CATALOG_SEED_FILE or the built-in catalog)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "text or json (default: LOG_FORMAT)")

	cmd.AddCommand(
		newAuditCmd(g),
		newBatchCmd(g),
		newValidateCmd(g),
		newDemoCmd(g),
		newCatalogCmd(g),
	)
	return cmd
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}

// --- helpers ---

// loadCatalog returns the catalog named by --catalog, falling back to the
// configured seed file and then the built-in catalog.
func (g *globalFlags) loadCatalog(cfg *config.Config) (catalog.Catalog, error) {
	path := g.catalog
	if path == "" {
		path = cfg.CatalogSeedFile
	}
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// service builds a screening service. concurrency overrides BATCH_CONCURRENCY when positive.
func (g *globalFlags) service(cmd *cobra.Command, concurrency int) (*screening.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, format := cfg.LogLevel, cfg.LogFormat
	if g.logLevel != "" {
		level = g.logLevel
	}
	if g.logFormat != "" {
		format = g.logFormat
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), level, format)

	c, err := g.loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = cfg.BatchConcurrency
	}

	return screening.New(screening.Config{
		DefaultProfile:      cfg.DefaultProfile,
		DefaultJurisdiction: cfg.DefaultJurisdiction,
		PresentationDays:    cfg.PresentationWindowDays,
		BatchConcurrency:    concurrency,
		MaxDocumentBytes:    cfg.MaxDocumentBytes,
	}, c, log, nil)
}

// readDocument reads a document from path, or from stdin when path is "-".
func readDocument(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
