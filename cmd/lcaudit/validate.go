package main

import (
	"github.com/spf13/cobra"
)

func newValidateCmd(g *globalFlags) *cobra.Command {
	var (
		lcPath string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Pre-check an LC draft before it is issued",
		Long: `validate checks an LC draft on its own: mandatory fields, known
currency, sensible dates and amounts, vague descriptions, restrictive
clauses and common misspellings. It suggests fixes and prints the
corrected text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := readDocument(cmd, lcPath)
			if err != nil {
				return err
			}
			svc, err := g.service(cmd, 0)
			if err != nil {
				return err
			}
			res, err := svc.ValidateLC(lc)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if strict && !res.Valid {
				return errDraftIssues
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lcPath, "lc", "-", "LC text file, - for stdin")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the draft has critical issues")
	return cmd
}
