// Package anki renders enriched vocabulary records into Anki imports, both
// as TSV files and as ready-to-import .apkg decks.
package anki

import (
	"regexp"
	"strings"

	"github.com/at-ishikawa/kindanki/internal/enrichment"
)

// DeckType names a card orientation. The names follow the deck files they
// produce: anki_de_en.tsv is foreign-to-native for a de learner of en.
type DeckType string

const (
	DeckForeignNative DeckType = "foreign_native"
	DeckNativeForeign DeckType = "native_foreign"
	DeckNativeNative  DeckType = "native_native"
)

// Card is one deck row. Field names are semantic; the per-language column
// headers are derived at write time.
type Card struct {
	Lemma       string
	Word        string
	Language    string
	Definition  string
	Gloss       string
	ContextHTML string
	Book        string
	Notes       string
}

// NewCard shapes a cached record into a deck row. The context sentence gets
// the looked-up word bolded; cloze decks convert the markup on export.
func NewCard(record enrichment.Record) Card {
	return Card{
		Lemma:       record.Lemma,
		Word:        record.Word,
		Language:    record.Language,
		Definition:  record.Definition,
		Gloss:       record.Gloss,
		ContextHTML: BoldContext(record.Usage, record.Word),
		Book:        record.Book,
		Notes:       record.Notes,
	}
}

// Valid reports whether the card has every field the deck type renders.
// Notes are always optional; the gloss is not needed for monolingual decks.
func (c Card) Valid(deckType DeckType) bool {
	if c.Lemma == "" || c.Word == "" || c.Definition == "" || c.ContextHTML == "" || c.Book == "" {
		return false
	}
	if deckType == DeckNativeNative {
		return true
	}
	return c.Gloss != ""
}

// FilterValid drops cards that cannot be rendered for the deck type.
func FilterValid(cards []Card, deckType DeckType) []Card {
	var valid []Card
	for _, card := range cards {
		if card.Valid(deckType) {
			valid = append(valid, card)
		}
	}
	return valid
}

// Dedupe keeps the first card per lowercase lemma, preserving order. The
// cards arrive most-recent-lookup first, so the freshest context wins.
func Dedupe(cards []Card) []Card {
	seen := make(map[string]struct{}, len(cards))
	var unique []Card
	for _, card := range cards {
		lemma := strings.ToLower(strings.TrimSpace(card.Lemma))
		if lemma == "" {
			continue
		}
		if _, ok := seen[lemma]; ok {
			continue
		}
		seen[lemma] = struct{}{}
		unique = append(unique, card)
	}
	return unique
}

var clozePattern = regexp.MustCompile(`<b>(.*?)</b>`)

// BoldContext wraps the first occurrence of word in usage with <b> tags.
// The match is case insensitive and bounded at word edges so "run" does not
// highlight inside "running".
func BoldContext(usage, word string) string {
	if usage == "" || word == "" {
		return usage
	}
	pattern, err := regexp.Compile(`(?i)\b(` + regexp.QuoteMeta(word) + `)\b`)
	if err != nil {
		return usage
	}
	replaced := false
	return pattern.ReplaceAllStringFunc(usage, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		return "<b>" + match + "</b>"
	})
}

// BoldToCloze converts every <b>word</b> into {{c1::word}} so reverse decks
// hide the answer inside the context sentence.
func BoldToCloze(html string) string {
	return clozePattern.ReplaceAllString(html, "{{c1::$1}}")
}

// ClozeToBold converts the first cloze markup back to bold for decks that
// show the word.
func ClozeToBold(html string) string {
	if !strings.Contains(html, "{{c1::") {
		return html
	}
	html = strings.Replace(html, "{{c1::", "<b>", 1)
	return strings.Replace(html, "}}", "</b>", 1)
}
