package enrichment

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store is the persistent enrichment cache: a mapping from "language:lemma"
// to one complete record. It is the sole deduplication authority of the
// pipeline. Callers thread a Store explicitly; there is no package-level
// singleton, so tests can use isolated instances.
type Store struct {
	path    string
	records map[string]Record
}

// NewStore returns an empty store that will persist to path.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		records: map[string]Record{},
	}
}

// Load reads the persisted snapshot. A missing file yields an empty store;
// unparseable contents yield a CorruptCacheError, never an empty store.
func Load(path string) (*Store, error) {
	store := NewStore(path)

	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	if err := json.Unmarshal(contents, &store.records); err != nil {
		return nil, &CorruptCacheError{Path: path, Err: err}
	}
	return store, nil
}

// Lookup returns the record for the key's (lemma, language) identity.
// Original word and context are ignored: every surface form of a lemma
// shares one enrichment.
func (s *Store) Lookup(key LookupKey) (Record, bool) {
	record, ok := s.records[key.CacheID()]
	return record, ok
}

// Merge adds or overwrites one entry. Records with a blank required field
// are rejected with IncompleteRecordError and the store stays unchanged.
func (s *Store) Merge(record Record) error {
	if field := record.validate(); field != "" {
		return &IncompleteRecordError{
			Lemma:    record.Lemma,
			Language: record.Language,
			Field:    field,
		}
	}
	s.records[record.CacheID()] = record
	return nil
}

// Remove deletes one entry, reporting whether it existed. Used by the cache
// maintenance command to force regeneration of a single word.
func (s *Store) Remove(lemma, lang string) bool {
	id := cacheID(lemma, lang)
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	return true
}

// Flush persists the store atomically: the snapshot is written to a
// temporary file in the target directory and renamed over the old one, so
// a crash mid-write never leaves a truncated cache.
func (s *Store) Flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	contents, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent > %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp > %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(contents); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("tmp.Write > %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("tmp.Close > %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("os.Rename(%s) > %w", s.path, err)
	}
	return nil
}

// Partition splits the candidate keys into already-cached records and
// missing keys. Input order is preserved within each partition and repeated
// (lemma, language) occurrences collapse to one element, so no key can end
// up in more than one batch.
func (s *Store) Partition(keys []LookupKey) (cached []Record, missing []LookupKey) {
	seen := map[string]bool{}
	for _, key := range keys {
		id := key.CacheID()
		if seen[id] {
			continue
		}
		seen[id] = true

		if record, ok := s.records[id]; ok {
			cached = append(cached, record)
		} else {
			missing = append(missing, key)
		}
	}
	return cached, missing
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	return len(s.records)
}

// CountByLanguage returns per-language record counts.
func (s *Store) CountByLanguage() map[string]int {
	counts := map[string]int{}
	for _, record := range s.records {
		counts[record.Language]++
	}
	return counts
}

// Records returns all records sorted by cache key, for export and
// inspection.
func (s *Store) Records() []Record {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, s.records[id])
	}
	return records
}
