package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"

	"github.com/at-ishikawa/kindanki/internal/config"
	"github.com/at-ishikawa/kindanki/internal/enrichment"
	"github.com/at-ishikawa/kindanki/internal/inference"
	mock_inference "github.com/at-ishikawa/kindanki/internal/mocks/inference"
)

const vocabSchema = `
CREATE TABLE WORDS (
	id TEXT PRIMARY KEY,
	word TEXT,
	lang TEXT,
	timestamp INTEGER
);
CREATE TABLE BOOK_INFO (
	id TEXT PRIMARY KEY,
	title TEXT,
	authors TEXT
);
CREATE TABLE LOOKUPS (
	id TEXT PRIMARY KEY,
	word_key TEXT,
	book_key TEXT,
	usage TEXT
);`

func setupTestConfig(t *testing.T) *config.Config {
	t.Helper()
	tempDir := t.TempDir()

	databasePath := filepath.Join(tempDir, "vocab.db")
	db, err := sqlx.Open("sqlite", databasePath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(vocabSchema)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO WORDS (id, word, lang, timestamp) VALUES
			('de:laufen', 'Läuft', 'de', 300),
			('en:serendipity', 'serendipity', 'en_US', 200),
			('pl:dom', 'dom', 'pl', 100);
		INSERT INTO LOOKUPS (id, word_key, book_key, usage) VALUES
			('l1', 'de:laufen', NULL, 'Er läuft jeden Morgen.');
	`)
	require.NoError(t, err)

	return &config.Config{
		Languages: config.LanguagesConfig{
			Native: "en",
			Target: "de",
		},
		Vocabulary: config.VocabularyConfig{
			DatabaseFile: databasePath,
		},
		Enrichment: config.EnrichmentConfig{
			CacheFile:  filepath.Join(tempDir, "cache.json"),
			BatchSize:  20,
			MaxRetries: 1,
		},
		Outputs: config.OutputsConfig{
			TSVDirectory:  filepath.Join(tempDir, "tsv"),
			APKGDirectory: filepath.Join(tempDir, "apkg"),
		},
		Decks: config.DecksConfig{
			ForeignNative: true,
			NativeForeign: true,
			NativeNative:  true,
		},
	}
}

func cardResult(definition, gloss string) inference.CardResult {
	return inference.CardResult{
		Payload: inference.CardPayload{
			Definition: definition,
			Gloss:      gloss,
		},
	}
}

func TestRunEnrich(t *testing.T) {
	t.Run("enriches each configured language separately", func(t *testing.T) {
		cfg := setupTestConfig(t)
		ctrl := gomock.NewController(t)
		client := mock_inference.NewMockClient(ctrl)

		client.EXPECT().
			GenerateCards(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, request inference.GenerateCardsRequest) (inference.GenerateCardsResponse, error) {
				require.Len(t, request.Words, 1)
				switch request.WordLanguage {
				case "de":
					assert.Equal(t, "läuft", request.Words[0].Lemma)
					assert.Equal(t, "Läuft", request.Words[0].Word)
					return inference.GenerateCardsResponse{
						Results: []inference.CardResult{cardResult("rennen, sich schnell bewegen", "to run")},
						CallID:  "call-de",
					}, nil
				case "en":
					assert.Equal(t, "serendipity", request.Words[0].Lemma)
					return inference.GenerateCardsResponse{
						Results: []inference.CardResult{cardResult("a fortunate accident", "lucky find")},
						CallID:  "call-en",
					}, nil
				default:
					t.Fatalf("unexpected word language %q", request.WordLanguage)
					return inference.GenerateCardsResponse{}, nil
				}
			}).
			Times(2)

		var output bytes.Buffer
		err := RunEnrich(context.Background(), cfg, client, false, &output)
		require.NoError(t, err)

		assert.Contains(t, output.String(), "3 lookups in")
		assert.Contains(t, output.String(), `ignoring 1 lookups in language "pl"`)
		assert.Contains(t, output.String(), "Enriching German words")
		assert.Contains(t, output.String(), "Enriching English words")
		assert.Contains(t, output.String(), "Done: 0 cached, 2 newly enriched")

		// The cache file is durable after the run.
		store, err := enrichment.Load(cfg.Enrichment.CacheFile)
		require.NoError(t, err)
		record, ok := store.Lookup(enrichment.LookupKey{Lemma: "läuft", Language: "de"})
		require.True(t, ok)
		assert.Equal(t, "to run", record.Gloss)
	})

	t.Run("dry run issues no generation calls", func(t *testing.T) {
		cfg := setupTestConfig(t)

		var output bytes.Buffer
		err := RunEnrich(context.Background(), cfg, nil, true, &output)
		require.NoError(t, err)

		assert.Contains(t, output.String(), "DE: 1 unique words, 0 cached, 1 would be enriched")
		assert.Contains(t, output.String(), "EN: 1 unique words, 0 cached, 1 would be enriched")

		_, err = enrichment.Load(cfg.Enrichment.CacheFile)
		require.NoError(t, err)
	})

	t.Run("cached words are not sent again", func(t *testing.T) {
		cfg := setupTestConfig(t)
		store := enrichment.NewStore(cfg.Enrichment.CacheFile)
		require.NoError(t, store.Merge(enrichment.Record{
			Lemma:      "läuft",
			Language:   "de",
			Word:       "Läuft",
			Definition: "rennen",
			Gloss:      "to run",
			CreatedAt:  time.Now().UTC(),
		}))
		require.NoError(t, store.Flush())

		ctrl := gomock.NewController(t)
		client := mock_inference.NewMockClient(ctrl)
		client.EXPECT().
			GenerateCards(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, request inference.GenerateCardsRequest) (inference.GenerateCardsResponse, error) {
				assert.Equal(t, "en", request.WordLanguage)
				return inference.GenerateCardsResponse{
					Results: []inference.CardResult{cardResult("a fortunate accident", "lucky find")},
				}, nil
			})

		var output bytes.Buffer
		err := RunEnrich(context.Background(), cfg, client, false, &output)
		require.NoError(t, err)
		assert.Contains(t, output.String(), "Done: 1 cached, 1 newly enriched")
	})

	t.Run("unresolved words are listed", func(t *testing.T) {
		cfg := setupTestConfig(t)
		ctrl := gomock.NewController(t)
		client := mock_inference.NewMockClient(ctrl)
		client.EXPECT().
			GenerateCards(gomock.Any(), gomock.Any()).
			Return(inference.GenerateCardsResponse{
				Results: []inference.CardResult{{FailureReason: "incomplete payload"}},
			}, nil).
			Times(2)

		var output bytes.Buffer
		err := RunEnrich(context.Background(), cfg, client, false, &output)
		require.NoError(t, err)

		assert.Contains(t, output.String(), "2 words unresolved")
		assert.Contains(t, output.String(), "läuft (de): incomplete payload")
		assert.Contains(t, output.String(), "serendipity (en): incomplete payload")
	})

	t.Run("missing vocabulary database fails", func(t *testing.T) {
		cfg := setupTestConfig(t)
		cfg.Vocabulary.DatabaseFile = filepath.Join(t.TempDir(), "missing.db")

		var output bytes.Buffer
		err := RunEnrich(context.Background(), cfg, nil, true, &output)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vocabulary.Open")
	})
}

func TestLemmatize(t *testing.T) {
	assert.Equal(t, "läuft", lemmatize(" Läuft "))
	assert.Equal(t, "running", lemmatize("running"))
}
