package enrichment

import "fmt"

// CorruptCacheError means the persisted cache exists but cannot be parsed.
// It is always fatal: treating a corrupt cache as empty would re-bill the
// API for every word already paid for.
type CorruptCacheError struct {
	Path string
	Err  error
}

func (e *CorruptCacheError) Error() string {
	return fmt.Sprintf("cache file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptCacheError) Unwrap() error {
	return e.Err
}

// IncompleteRecordError rejects a merge whose record has a blank required
// field. The store is left unchanged.
type IncompleteRecordError struct {
	Lemma    string
	Language string
	Field    string
}

func (e *IncompleteRecordError) Error() string {
	return fmt.Sprintf("record %s:%s has empty required field %q", e.Language, e.Lemma, e.Field)
}
