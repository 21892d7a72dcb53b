package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/at-ishikawa/kindanki/internal/anki"
	"github.com/at-ishikawa/kindanki/internal/config"
	"github.com/at-ishikawa/kindanki/internal/enrichment"
)

// RunExport renders every cached record into the configured Anki decks.
func RunExport(cfg *config.Config, writer io.Writer) error {
	store, err := enrichment.Load(cfg.Enrichment.CacheFile)
	if err != nil {
		return fmt.Errorf("enrichment.Load(%s) > %w", cfg.Enrichment.CacheFile, err)
	}
	if store.Len() == 0 {
		fmt.Fprintln(writer, "The cache is empty. Run \"kindanki enrich\" first.")
		return nil
	}

	fmt.Fprintf(writer, "Exporting %d cached words\n", store.Len())
	result, err := anki.Export(store.Records(), anki.ExportOptions{
		TSVDir:         cfg.Outputs.TSVDirectory,
		APKGDir:        cfg.Outputs.APKGDirectory,
		NativeLanguage: cfg.Languages.Native,
		TargetLanguage: cfg.Languages.Target,
		ForeignNative:  cfg.Decks.ForeignNative,
		NativeForeign:  cfg.Decks.NativeForeign,
		NativeNative:   cfg.Decks.NativeNative,
		CreateAPKG:     cfg.Decks.CreateAPKG,
	}, writer)
	if err != nil {
		return fmt.Errorf("anki.Export > %w", err)
	}

	color.New(color.FgGreen).Fprintf(writer, "Done: %d files written\n", len(result.Files))
	return nil
}
