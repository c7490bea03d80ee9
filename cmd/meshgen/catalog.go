package main

import (
	"fmt"

	"github.com/alevsk/meshgen/internal/catalog"
	"github.com/alevsk/meshgen/internal/config"
	"github.com/alevsk/meshgen/internal/formatter"
	"github.com/spf13/cobra"
)

var (
	catalogProfile string
	catalogOutput  string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the files a profile generates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := cfg.Profile
		if cmd.Flags().Changed("profile") {
			p = config.Profile(catalogProfile)
		}

		c, err := catalog.New(p)
		if err != nil {
			return err
		}

		ft, err := formatter.ParseType(catalogOutput)
		if err != nil {
			return err
		}
		f, err := formatter.NewFormatter(ft, nil)
		if err != nil {
			return err
		}
		out, err := f.FormatCatalog(c)
		if err != nil {
			return fmt.Errorf("error formatting catalog: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogProfile, "profile", "", "catalog variant (tracing, central)")
	catalogCmd.Flags().StringVarP(&catalogOutput, "output", "o", "table", "output format (table, json, yaml, markdown)")
}
