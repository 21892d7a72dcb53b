package anki

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/at-ishikawa/kindanki/internal/enrichment"
)

// ExportOptions selects which decks to write and where.
type ExportOptions struct {
	TSVDir         string
	APKGDir        string
	NativeLanguage string
	TargetLanguage string

	ForeignNative bool
	NativeForeign bool
	NativeNative  bool
	CreateAPKG    bool
}

// ExportResult reports the files written and the card counts per deck.
type ExportResult struct {
	Files      []string
	CardCounts map[DeckType]int
}

// Export renders enriched records into TSV files, and .apkg packages when
// enabled. Records in the target language feed both bilingual decks; records
// in the native language feed the monolingual deck. Other languages are
// skipped.
func Export(records []enrichment.Record, options ExportOptions, writer io.Writer) (*ExportResult, error) {
	var foreignCards, nativeCards []Card
	for _, record := range records {
		card := NewCard(record)
		switch strings.ToLower(record.Language) {
		case strings.ToLower(options.TargetLanguage):
			foreignCards = append(foreignCards, card)
		case strings.ToLower(options.NativeLanguage):
			nativeCards = append(nativeCards, card)
		}
	}
	foreignCards = Dedupe(foreignCards)
	nativeCards = Dedupe(nativeCards)

	result := &ExportResult{CardCounts: make(map[DeckType]int)}

	decks := []struct {
		deckType DeckType
		enabled  bool
		cards    []Card
	}{
		{DeckForeignNative, options.ForeignNative, foreignCards},
		{DeckNativeForeign, options.NativeForeign, foreignCards},
		{DeckNativeNative, options.NativeNative, nativeCards},
	}

	for _, deck := range decks {
		if !deck.enabled {
			continue
		}
		cards := FilterValid(deck.cards, deck.deckType)
		if len(cards) == 0 {
			fmt.Fprintf(writer, "  no cards for %s, skipped\n", deck.deckType)
			continue
		}

		tsvPath := filepath.Join(options.TSVDir, TSVFileName(deck.deckType, options.NativeLanguage, options.TargetLanguage))
		if err := WriteTSV(cards, tsvPath, deck.deckType, options.NativeLanguage, options.TargetLanguage); err != nil {
			return nil, fmt.Errorf("WriteTSV(%s) > %w", tsvPath, err)
		}
		result.Files = append(result.Files, tsvPath)
		result.CardCounts[deck.deckType] = len(cards)
		fmt.Fprintf(writer, "  %s (%d cards)\n", tsvPath, len(cards))

		if options.CreateAPKG {
			apkgPath := filepath.Join(options.APKGDir, apkgFileName(deck.deckType, options.NativeLanguage, options.TargetLanguage))
			if err := WriteAPKG(cards, apkgPath, deck.deckType, options.NativeLanguage, options.TargetLanguage); err != nil {
				return nil, fmt.Errorf("WriteAPKG(%s) > %w", apkgPath, err)
			}
			result.Files = append(result.Files, apkgPath)
			fmt.Fprintf(writer, "  %s\n", apkgPath)
		}
	}

	return result, nil
}

func apkgFileName(deckType DeckType, nativeLanguage, targetLanguage string) string {
	name := TSVFileName(deckType, nativeLanguage, targetLanguage)
	return strings.TrimSuffix(name, ".tsv") + ".apkg"
}
