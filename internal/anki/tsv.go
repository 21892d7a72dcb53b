package anki

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/at-ishikawa/kindanki/internal/language"
)

// tsvColumns derives header names and a row mapper for one deck type. The
// column order matches the note model field order so Anki imports line up
// without manual remapping.
func tsvColumns(deckType DeckType, nativeLanguage, targetLanguage string) ([]string, func(Card) []string) {
	nativeLemma := language.FieldKey(nativeLanguage, "lemma")
	nativeDefinition := language.FieldKey(nativeLanguage, "definition")
	nativeGloss := language.FieldKey(nativeLanguage, "gloss")
	targetLemma := language.FieldKey(targetLanguage, "lemma")
	targetDefinition := language.FieldKey(targetLanguage, "definition")

	switch deckType {
	case DeckNativeNative:
		header := []string{nativeLemma, "Original_word", nativeDefinition, "Context_HTML", "Book", "Notes"}
		return header, func(card Card) []string {
			return []string{card.Lemma, card.Word, card.Definition, ClozeToBold(card.ContextHTML), card.Book, card.Notes}
		}
	case DeckNativeForeign:
		header := []string{nativeGloss, targetLemma, "Original_word", targetDefinition, "Context_HTML", "Book", "Notes"}
		return header, func(card Card) []string {
			return []string{card.Gloss, card.Lemma, card.Word, card.Definition, BoldToCloze(card.ContextHTML), card.Book, card.Notes}
		}
	default: // DeckForeignNative
		header := []string{targetLemma, "Original_word", targetDefinition, nativeGloss, "Context_HTML", "Book", "Notes"}
		return header, func(card Card) []string {
			return []string{card.Lemma, card.Word, card.Definition, card.Gloss, ClozeToBold(card.ContextHTML), card.Book, card.Notes}
		}
	}
}

// sanitizeTSVField keeps tab-separated rows one line each.
func sanitizeTSVField(value string) string {
	value = strings.ReplaceAll(value, "\t", " ")
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}

// WriteTSV writes one deck's cards as a tab-separated file with a header
// row, ready for Anki's importer.
func WriteTSV(cards []Card, path string, deckType DeckType, nativeLanguage, targetLanguage string) error {
	if len(cards) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}

	header, mapRow := tsvColumns(deckType, nativeLanguage, targetLanguage)

	var builder strings.Builder
	builder.WriteString(strings.Join(header, "\t"))
	builder.WriteString("\n")
	for _, card := range cards {
		row := mapRow(card)
		for i, field := range row {
			row[i] = sanitizeTSVField(field)
		}
		builder.WriteString(strings.Join(row, "\t"))
		builder.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

// TSVFileName returns the deck's conventional file name, e.g. "anki_de_en.tsv"
// for a foreign-to-native deck of de words glossed in en.
func TSVFileName(deckType DeckType, nativeLanguage, targetLanguage string) string {
	switch deckType {
	case DeckNativeForeign:
		return "anki_" + language.Pair(nativeLanguage, targetLanguage) + ".tsv"
	case DeckNativeNative:
		return "anki_" + language.Pair(nativeLanguage, nativeLanguage) + ".tsv"
	default:
		return "anki_" + language.Pair(targetLanguage, nativeLanguage) + ".tsv"
	}
}
