package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/kindanki/internal/cli"
	"github.com/at-ishikawa/kindanki/internal/inference/gemini"
)

func newEnrichCommand() *cobra.Command {
	var dryRun bool

	command := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich uncached Kindle vocabulary through the Gemini API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if dryRun {
				return cli.RunEnrich(cmd.Context(), cfg, nil, true, os.Stdout)
			}

			if cfg.Gemini.APIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY environment variable is required")
			}
			fmt.Printf("Using Gemini provider (model: %s)\n", cfg.Gemini.Model)
			geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Enrichment.MaxRetries, cfg.Enrichment.BatchInterval)
			defer func() {
				_ = geminiClient.Close()
			}()

			if err := cli.RunEnrich(cmd.Context(), cfg, geminiClient, false, os.Stdout); err != nil {
				return err
			}
			return cli.RunExport(cfg, os.Stdout)
		},
	}
	command.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be enriched without calling the API")

	return command
}
