package main

import (
	"fmt"
	"time"

	"github.com/alevsk/meshgen/internal/config"
	"github.com/alevsk/meshgen/internal/formatter"
	"github.com/alevsk/meshgen/internal/generator"
	"github.com/spf13/cobra"
)

var (
	// Generate flags
	repoURL                string
	observabilityNamespace string
	profile                string
	outputDir              string
	fetchURL               string
	fetchTimeout           time.Duration
	strictFetch            bool
	fetchRetries           int
	validateTree           bool
	generateOutput         string
	includeMetadata        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the GitOps manifest tree",
	Long: `Write the GitOps manifest tree under the output directory.

Every file is fully replaced on each run, unrelated files are left alone.
The bookinfo sample manifest is downloaded and stored verbatim; a failed
download only produces a warning unless --strict-fetch is set.

Examples:
  # Central observability layout in the current directory
  meshgen generate --repo-url https://github.com/org/gitops.git

  # Original tracing-system layout into ./gitops
  meshgen generate --profile tracing --output-dir ./gitops

  # Fail when the sample manifest cannot be downloaded
  meshgen generate --strict-fetch --fetch-retries 3 -o json`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Override config values with flags if provided
		flags := cmd.Flags()
		if flags.Changed("repo-url") {
			cfg.RepoURL = repoURL
		}
		if flags.Changed("profile") {
			cfg.Profile = config.Profile(profile)
		}
		if flags.Changed("observability-namespace") {
			cfg.ObservabilityNamespace = observabilityNamespace
		}
		if flags.Changed("output-dir") {
			cfg.OutputDir = outputDir
		}
		if flags.Changed("fetch-url") {
			cfg.Fetch.URL = fetchURL
		}
		if flags.Changed("fetch-timeout") {
			cfg.Fetch.Timeout = fetchTimeout
		}
		if flags.Changed("strict-fetch") {
			cfg.Fetch.Strict = strictFetch
		}
		if flags.Changed("fetch-retries") {
			cfg.Fetch.Retries = fetchRetries
		}
		if flags.Changed("validate") {
			cfg.ValidateTree = validateTree
		}
		// the namespace default depends on the final profile
		cfg.ApplyProfileDefaults()

		if _, err := formatter.ParseType(generateOutput); err != nil {
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := generator.New(cfg, nil)
		if err != nil {
			return err
		}

		report, genErr := gen.Generate(cmd.Context())

		ft, err := formatter.ParseType(generateOutput)
		if err != nil {
			return err
		}
		f, err := formatter.NewFormatter(ft, &formatter.Options{IncludeMetadata: includeMetadata})
		if err != nil {
			return err
		}
		out, err := f.Format(report)
		if err != nil {
			return fmt.Errorf("error formatting report: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)

		if genErr != nil {
			return fmt.Errorf("generation failed: %w", genErr)
		}
		return nil
	},
}

func init() {
	flags := generateCmd.Flags()
	flags.StringVar(&repoURL, "repo-url", "", "Git remote the Argo CD applications sync from")
	flags.StringVar(&observabilityNamespace, "observability-namespace", "",
		"namespace for the tracing backend (default depends on --profile)")
	flags.StringVar(&profile, "profile", "", "catalog variant (tracing, central)")
	flags.StringVar(&outputDir, "output-dir", "", "root directory of the generated tree")
	flags.StringVar(&fetchURL, "fetch-url", "", "URL of the bookinfo sample manifest")
	flags.DurationVar(&fetchTimeout, "fetch-timeout", 0, "timeout of a single download attempt (e.g., 10s)")
	flags.BoolVar(&strictFetch, "strict-fetch", false, "fail when the sample manifest cannot be downloaded")
	flags.IntVar(&fetchRetries, "fetch-retries", 0, "extra download attempts on transport errors and 5xx responses")
	flags.BoolVar(&validateTree, "validate", false, "validate the rendered manifests before writing")
	flags.StringVarP(&generateOutput, "output", "o", "table", "report format (table, json, yaml, markdown)")
	flags.BoolVar(&includeMetadata, "include-metadata", true, "include run parameters in the report")
}
