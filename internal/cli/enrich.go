// Package cli implements the command workflows behind the kindanki
// commands: enrichment runs, deck exports and cache maintenance.
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/kindanki/internal/config"
	"github.com/at-ishikawa/kindanki/internal/enrichment"
	"github.com/at-ishikawa/kindanki/internal/inference"
	"github.com/at-ishikawa/kindanki/internal/language"
	"github.com/at-ishikawa/kindanki/internal/vocabulary"
)

// RunEnrich reads the Kindle vocabulary database, enriches every uncached
// word through client and reports the outcome. With dryRun, it only reports
// what a real run would send. client may be nil in dry-run mode.
func RunEnrich(ctx context.Context, cfg *config.Config, client inference.Client, dryRun bool, writer io.Writer) error {
	repository, err := vocabulary.Open(cfg.Vocabulary.DatabaseFile)
	if err != nil {
		return fmt.Errorf("vocabulary.Open(%s) > %w", cfg.Vocabulary.DatabaseFile, err)
	}
	defer func() {
		_ = repository.Close()
	}()

	lookups, err := repository.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("repository.FindAll > %w", err)
	}
	fmt.Fprintf(writer, "%d lookups in %s\n", len(lookups), cfg.Vocabulary.DatabaseFile)
	reportIgnoredLanguages(lookups, cfg, writer)

	store, err := enrichment.Load(cfg.Enrichment.CacheFile)
	if err != nil {
		return fmt.Errorf("enrichment.Load(%s) > %w", cfg.Enrichment.CacheFile, err)
	}

	// One pipeline run per language so every batch carries a single word
	// language for the prompt.
	runLanguages := []string{cfg.Languages.Target, cfg.Languages.Native}

	if dryRun {
		for _, lang := range runLanguages {
			keys := lookupKeys(lookups, lang)
			cached, missing := store.Partition(keys)
			fmt.Fprintf(writer, "%s: %d unique words, %d cached, %d would be enriched\n",
				strings.ToUpper(lang), len(cached)+len(missing), len(cached), len(missing))
		}
		return nil
	}

	var cachedCount, enrichedCount int
	var unresolved []enrichment.UnresolvedItem
	for _, lang := range runLanguages {
		keys := lookupKeys(lookups, lang)
		if len(keys) == 0 {
			continue
		}

		meta, err := language.GetMeta(lang)
		if err != nil {
			return fmt.Errorf("language.GetMeta(%s) > %w", lang, err)
		}
		fmt.Fprintf(writer, "Enriching %s words\n", meta.EnglishName)

		orchestrator := enrichment.NewOrchestrator(store, client, cfg.Languages.Native, cfg.Languages.Target, cfg.Enrichment.BatchSize, writer)
		result, err := orchestrator.Run(ctx, keys)
		if err != nil {
			return fmt.Errorf("orchestrator.Run(%s) > %w", lang, err)
		}
		cachedCount += result.CachedCount
		enrichedCount += result.EnrichedCount
		unresolved = append(unresolved, result.Unresolved...)
	}

	color.New(color.FgGreen).Fprintf(writer, "Done: %d cached, %d newly enriched\n", cachedCount, enrichedCount)
	if len(unresolved) > 0 {
		color.New(color.FgYellow).Fprintf(writer, "%d words unresolved, they will be retried on the next run:\n", len(unresolved))
		for _, item := range unresolved {
			fmt.Fprintf(writer, "  - %s (%s): %s\n", item.Key.Lemma, item.Key.Language, item.Reason)
		}
	}
	return nil
}

// lookupKeys turns one language's lookups into cache keys, newest first.
func lookupKeys(lookups []vocabulary.Lookup, lang string) []enrichment.LookupKey {
	selected := vocabulary.FilterByLanguage(lookups, lang)
	keys := make([]enrichment.LookupKey, 0, len(selected))
	for _, lookup := range selected {
		keys = append(keys, lookup.LookupKey(lemmatize(lookup.Word)))
	}
	return keys
}

// lemmatize normalizes an inflected Kindle word into its cache lemma.
// Kindle stores the surface form; lowercasing is the only normalization we
// can do without a morphology model, so "Läuft" and "läuft" share a cache
// entry while "läuft" and "laufen" stay separate.
func lemmatize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

func reportIgnoredLanguages(lookups []vocabulary.Lookup, cfg *config.Config, writer io.Writer) {
	counts := vocabulary.CountByLanguage(lookups)
	delete(counts, strings.ToLower(cfg.Languages.Native))
	delete(counts, strings.ToLower(cfg.Languages.Target))
	if len(counts) == 0 {
		return
	}

	ignored := make([]string, 0, len(counts))
	for lang := range counts {
		ignored = append(ignored, lang)
	}
	sort.Strings(ignored)
	for _, lang := range ignored {
		fmt.Fprintf(writer, "  ignoring %d lookups in language %q\n", counts[lang], lang)
	}
}
