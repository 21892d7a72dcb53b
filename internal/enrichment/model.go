// Package enrichment implements the translation cache and the batch
// pipeline that turns raw vocabulary lookups into complete card records.
package enrichment

import (
	"strings"
	"time"
)

// LookupKey identifies one vocabulary occurrence coming from the Kindle
// database. Cache identity is (lemma, language) only; the remaining fields
// carry per-occurrence context the generation service and the exporter need.
type LookupKey struct {
	Lemma    string
	Language string
	Word     string
	Usage    string
	Book     string
}

// CacheID returns the persisted cache key, e.g. "en:run".
func (k LookupKey) CacheID() string {
	return cacheID(k.Lemma, k.Language)
}

func cacheID(lemma, lang string) string {
	return strings.ToLower(lang) + ":" + strings.ToLower(strings.TrimSpace(lemma))
}

// Record is one complete enrichment. Records are immutable once merged; a
// later lookup with the same (lemma, language) never regenerates them.
type Record struct {
	Lemma      string    `json:"lemma" yaml:"lemma"`
	Language   string    `json:"language" yaml:"language"`
	Word       string    `json:"original_word" yaml:"original_word"`
	Usage      string    `json:"usage,omitempty" yaml:"usage,omitempty"`
	Book       string    `json:"book,omitempty" yaml:"book,omitempty"`
	Definition string    `json:"definition" yaml:"definition"`
	Gloss      string    `json:"gloss" yaml:"gloss"`
	Notes      string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	CallID     string    `json:"source_call_id,omitempty" yaml:"source_call_id,omitempty"`
}

// CacheID returns the persisted cache key for the record.
func (r Record) CacheID() string {
	return cacheID(r.Lemma, r.Language)
}

// validate reports the first blank required field, or "" when the record is
// complete. Notes may legitimately be empty.
func (r Record) validate() string {
	switch {
	case strings.TrimSpace(r.Lemma) == "":
		return "lemma"
	case strings.TrimSpace(r.Language) == "":
		return "language"
	case strings.TrimSpace(r.Definition) == "":
		return "definition"
	case strings.TrimSpace(r.Gloss) == "":
		return "gloss"
	}
	return ""
}

// Batch is an ordered group of unique keys submitted in one external call.
type Batch []LookupKey

// UnresolvedItem records a key that did not obtain an enrichment this run.
// The ledger is recomputed every run and never persisted, so unresolved
// items are retried on the next invocation.
type UnresolvedItem struct {
	Key    LookupKey
	Reason string
}
