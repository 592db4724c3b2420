package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exportsafe/lcaudit/internal/catalog"
	"github.com/exportsafe/lcaudit/internal/config"
)

func newCatalogCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect rule catalogs",
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog in use as YAML",
		Long: `export writes the catalog lcaudit would use (see --catalog) as YAML.
Start from the built-in catalog to write your own seed file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c, err := g.loadCatalog(cfg)
			if err != nil {
				return err
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
			return c.WriteYAML(w)
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "write here instead of stdout")

	checkCmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d corrections, %d jurisdictions\n",
				args[0], len(c.Corrections), len(c.Jurisdictions))
			return nil
		},
	}

	cmd.AddCommand(exportCmd, checkCmd)
	return cmd
}
