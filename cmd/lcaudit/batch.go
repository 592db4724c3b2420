package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/ingestion"
	"github.com/exportsafe/lcaudit/internal/screening"
)

type batchSummary struct {
	BatchID string             `json:"batch_id"`
	Digest  string             `json:"digest"`
	Count   int                `json:"count"`
	Passed  int                `json:"passed"`
	Failed  int                `json:"failed"`
	Errors  int                `json:"errors"`
	Results []screening.Result `json:"results"`
}

func newBatchCmd(g *globalFlags) *cobra.Command {
	var (
		file        string
		format      string
		out         string
		concurrency int
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Audit every LC/invoice pair in a batch file",
		Long: `batch audits a JSON, CSV or YAML file of LC/invoice pairs concurrently.
Items without an id are numbered after the batch id; the batch id is taken
from the file or derived from its content.`,
		Example: `  lcaudit batch --file testdata/batch.json --concurrency 8 --out results.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				b   ingestion.Batch
				err error
			)
			if format == "" {
				b, err = ingestion.LoadFile(file)
			} else {
				var data []byte
				if data, err = os.ReadFile(file); err == nil {
					b, err = ingestion.Parse(data, format)
				}
			}
			if err != nil {
				return err
			}

			svc, err := g.service(cmd, concurrency)
			if err != nil {
				return err
			}

			start := time.Now()
			results, err := svc.AuditBatch(cmd.Context(), b.Requests)
			if err != nil {
				return err
			}

			summary := batchSummary{BatchID: b.ID, Digest: b.Digest, Count: len(results), Results: results}
			for _, r := range results {
				switch {
				case r.Error != "":
					summary.Errors++
				case r.Report.Status == domain.StatusPass:
					summary.Passed++
				default:
					summary.Failed++
				}
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := writeJSON(w, summary); err != nil {
				return fmt.Errorf("write results: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "batch %s: %d audited in %s, %d passed, %d failed, %d rejected\n",
				b.ID, summary.Count, time.Since(start).Round(time.Millisecond), summary.Passed, summary.Failed, summary.Errors)

			if strict && summary.Failed+summary.Errors > 0 {
				return errAuditFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file (.json, .csv, .yaml)")
	cmd.Flags().StringVar(&format, "format", "", "json, csv or yaml (default: by extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write results here instead of stdout")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "audits run at once (default: BATCH_CONCURRENCY)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any item fails or is rejected")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
