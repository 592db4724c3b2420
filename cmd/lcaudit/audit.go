package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/exportsafe/lcaudit/internal/domain"
	"github.com/exportsafe/lcaudit/internal/screening"
)

func newAuditCmd(g *globalFlags) *cobra.Command {
	var (
		lcPath       string
		invoicePath  string
		profile      string
		jurisdiction string
		fields       bool
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit one invoice against its LC",
		Example: `  lcaudit audit --lc lc.txt --invoice invoice.txt
  lcaudit audit --lc lc.txt --invoice - --profile basic --jurisdiction IN < invoice.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if lcPath == "-" && invoicePath == "-" {
				return errors.New("only one of --lc and --invoice can read stdin")
			}
			lc, err := readDocument(cmd, lcPath)
			if err != nil {
				return err
			}
			invoice, err := readDocument(cmd, invoicePath)
			if err != nil {
				return err
			}

			svc, err := g.service(cmd, 0)
			if err != nil {
				return err
			}
			res, err := svc.Audit(cmd.Context(), screening.Request{
				LC:            lc,
				Invoice:       invoice,
				Profile:       profile,
				Jurisdiction:  jurisdiction,
				IncludeFields: fields,
			})
			if err != nil {
				return err
			}

			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if strict && res.Report.Status == domain.StatusFail {
				return errAuditFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lcPath, "lc", "", "LC text file, - for stdin")
	cmd.Flags().StringVar(&invoicePath, "invoice", "", "commercial invoice text file, - for stdin")
	cmd.Flags().StringVar(&profile, "profile", "", "scoring profile: forensic or basic (default: DEFAULT_PROFILE)")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "jurisdiction code for regulatory checks (default: DEFAULT_JURISDICTION)")
	cmd.Flags().BoolVar(&fields, "fields", false, "include the extracted fields in the report")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the audit fails")
	_ = cmd.MarkFlagRequired("lc")
	_ = cmd.MarkFlagRequired("invoice")
	return cmd
}

func newDemoCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Audit the bundled sample LC and invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := g.service(cmd, 0)
			if err != nil {
				return err
			}
			res, err := svc.Demo(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}
