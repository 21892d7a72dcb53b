package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/kindanki/internal/cli"
)

func newCacheCommand() *cobra.Command {
	cacheCommand := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the enrichment cache",
	}

	cacheCommand.AddCommand(newCacheStatsCommand())
	cacheCommand.AddCommand(newCacheShowCommand())
	cacheCommand.AddCommand(newCacheRemoveCommand())

	return cacheCommand
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cached word counts per language",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			return cli.RunCacheStats(cfg, os.Stdout)
		},
	}
}

func newCacheShowCommand() *cobra.Command {
	var lang languageValue

	command := &cobra.Command{
		Use:   "show <lemma>",
		Short: "Show one cached enrichment as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			code := lang.String()
			if code == "" {
				code = cfg.Languages.Target
			}
			return cli.RunCacheShow(cfg, args[0], code, os.Stdout)
		},
	}
	command.Flags().Var(&lang, "language", "Language of the lemma (defaults to the target language)")

	return command
}

func newCacheRemoveCommand() *cobra.Command {
	var lang languageValue

	command := &cobra.Command{
		Use:   "remove <lemma>",
		Short: "Remove one cached enrichment so it is regenerated on the next run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			code := lang.String()
			if code == "" {
				code = cfg.Languages.Target
			}
			return cli.RunCacheRemove(cfg, args[0], code, os.Stdout)
		},
	}
	command.Flags().Var(&lang, "language", "Language of the lemma (defaults to the target language)")

	return command
}
