package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/kindanki/internal/enrichment"
)

func TestRunCacheStats(t *testing.T) {
	cfg := setupTestConfig(t)
	seedCache(t, cfg,
		enrichment.Record{Lemma: "laufen", Language: "de", Word: "läuft", Definition: "rennen", Gloss: "to run", CreatedAt: time.Now().UTC()},
		enrichment.Record{Lemma: "haus", Language: "de", Word: "Haus", Definition: "Gebäude", Gloss: "house", CreatedAt: time.Now().UTC()},
		enrichment.Record{Lemma: "serendipity", Language: "en", Word: "serendipity", Definition: "a fortunate accident", Gloss: "lucky find", CreatedAt: time.Now().UTC()},
	)

	var output bytes.Buffer
	err := RunCacheStats(cfg, &output)
	require.NoError(t, err)

	assert.Contains(t, output.String(), "Total enriched words: 3")
	assert.Contains(t, output.String(), "DE: 2")
	assert.Contains(t, output.String(), "EN: 1")
}

func TestRunCacheShow(t *testing.T) {
	cfg := setupTestConfig(t)
	seedCache(t, cfg, enrichment.Record{
		Lemma:      "laufen",
		Language:   "de",
		Word:       "läuft",
		Definition: "rennen, sich schnell bewegen",
		Gloss:      "to run",
		Notes:      "auch: rennen",
		CreatedAt:  time.Now().UTC(),
	})

	t.Run("prints the record as YAML", func(t *testing.T) {
		var output bytes.Buffer
		err := RunCacheShow(cfg, "Laufen", "de", &output)
		require.NoError(t, err)

		assert.Contains(t, output.String(), "lemma: laufen")
		assert.Contains(t, output.String(), "gloss: to run")
		assert.Contains(t, output.String(), "notes: 'auch: rennen'")
	})

	t.Run("unknown lemma fails", func(t *testing.T) {
		var output bytes.Buffer
		err := RunCacheShow(cfg, "fliegen", "de", &output)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no cache entry")
	})
}

func TestRunCacheRemove(t *testing.T) {
	cfg := setupTestConfig(t)
	seedCache(t, cfg, enrichment.Record{
		Lemma:      "laufen",
		Language:   "de",
		Word:       "läuft",
		Definition: "rennen",
		Gloss:      "to run",
		CreatedAt:  time.Now().UTC(),
	})

	var output bytes.Buffer
	err := RunCacheRemove(cfg, "laufen", "de", &output)
	require.NoError(t, err)
	assert.Contains(t, output.String(), `Removed "laufen" (DE)`)

	// The removal is durable.
	store, err := enrichment.Load(cfg.Enrichment.CacheFile)
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	err = RunCacheRemove(cfg, "laufen", "de", &output)
	require.Error(t, err)
}
