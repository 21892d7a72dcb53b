// Package vocabulary reads lookups from a Kindle vocab.db file and shapes
// them for enrichment.
package vocabulary

import (
	"database/sql"

	"github.com/at-ishikawa/kindanki/internal/enrichment"
	"github.com/at-ishikawa/kindanki/internal/language"
)

// lookupRow mirrors the WORDS/LOOKUPS/BOOK_INFO join.
type lookupRow struct {
	ID      string         `db:"id"`
	Word    string         `db:"word"`
	Lang    string         `db:"lang"`
	Usage   sql.NullString `db:"usage"`
	Title   sql.NullString `db:"title"`
	Authors sql.NullString `db:"authors"`
}

// Lookup is one word the reader looked up on the device, joined with its
// context sentence and source book.
type Lookup struct {
	ID       string
	Word     string
	Language string
	Usage    string
	Book     string
	Authors  string
}

func (row lookupRow) toLookup() Lookup {
	book := "Unknown"
	if row.Title.Valid && row.Title.String != "" {
		book = row.Title.String
	}
	authors := "Unknown"
	if row.Authors.Valid && row.Authors.String != "" {
		authors = row.Authors.String
	}
	usage := ""
	if row.Usage.Valid {
		usage = row.Usage.String
	}
	return Lookup{
		ID:       row.ID,
		Word:     row.Word,
		Language: language.NormalizeCode(row.Lang),
		Usage:    usage,
		Book:     book,
		Authors:  authors,
	}
}

// LookupKey converts the lookup into the pipeline's cache key. The
// normalized book title keeps export output stable across runs.
func (l Lookup) LookupKey(lemma string) enrichment.LookupKey {
	return enrichment.LookupKey{
		Lemma:    lemma,
		Language: l.Language,
		Word:     l.Word,
		Usage:    l.Usage,
		Book:     NormalizeBookTitle(l.Book, l.Authors),
	}
}

// FilterByLanguage returns the lookups matching the normalized code.
func FilterByLanguage(lookups []Lookup, code string) []Lookup {
	code = language.NormalizeCode(code)
	var result []Lookup
	for _, lookup := range lookups {
		if lookup.Language == code {
			result = append(result, lookup)
		}
	}
	return result
}

// CountByLanguage tallies lookups per normalized language code.
func CountByLanguage(lookups []Lookup) map[string]int {
	counts := make(map[string]int)
	for _, lookup := range lookups {
		counts[lookup.Language]++
	}
	return counts
}
