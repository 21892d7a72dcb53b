package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/kindanki/internal/config"
	"github.com/at-ishikawa/kindanki/internal/enrichment"
)

// RunCacheStats prints how many enriched words the cache holds per language.
func RunCacheStats(cfg *config.Config, writer io.Writer) error {
	store, err := enrichment.Load(cfg.Enrichment.CacheFile)
	if err != nil {
		return fmt.Errorf("enrichment.Load(%s) > %w", cfg.Enrichment.CacheFile, err)
	}

	fmt.Fprintf(writer, "Cache file: %s\n", cfg.Enrichment.CacheFile)
	fmt.Fprintf(writer, "Total enriched words: %d\n", store.Len())

	counts := store.CountByLanguage()
	languages := make([]string, 0, len(counts))
	for lang := range counts {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	for _, lang := range languages {
		fmt.Fprintf(writer, "  %s: %d\n", strings.ToUpper(lang), counts[lang])
	}
	return nil
}

// RunCacheShow prints one cached record as YAML.
func RunCacheShow(cfg *config.Config, lemma, lang string, writer io.Writer) error {
	store, err := enrichment.Load(cfg.Enrichment.CacheFile)
	if err != nil {
		return fmt.Errorf("enrichment.Load(%s) > %w", cfg.Enrichment.CacheFile, err)
	}

	record, ok := store.Lookup(enrichment.LookupKey{Lemma: lemma, Language: lang})
	if !ok {
		return fmt.Errorf("no cache entry for %q in language %q", lemma, lang)
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("yaml.Marshal > %w", err)
	}
	fmt.Fprint(writer, string(data))
	return nil
}

// RunCacheRemove drops one record so the next enrich run regenerates it.
func RunCacheRemove(cfg *config.Config, lemma, lang string, writer io.Writer) error {
	store, err := enrichment.Load(cfg.Enrichment.CacheFile)
	if err != nil {
		return fmt.Errorf("enrichment.Load(%s) > %w", cfg.Enrichment.CacheFile, err)
	}

	if !store.Remove(lemma, lang) {
		return fmt.Errorf("no cache entry for %q in language %q", lemma, lang)
	}
	if err := store.Flush(); err != nil {
		return fmt.Errorf("store.Flush > %w", err)
	}

	fmt.Fprintf(writer, "Removed %q (%s). It will be enriched again on the next run.\n", lemma, strings.ToUpper(lang))
	return nil
}
