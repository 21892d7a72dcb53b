package anki

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/kindanki/internal/enrichment"
)

func enrichedRecord(lemma, lang string) enrichment.Record {
	return enrichment.Record{
		Lemma:      lemma,
		Language:   lang,
		Word:       lemma,
		Usage:      "Context with " + lemma + " inside.",
		Book:       "Some Book",
		Definition: "definition of " + lemma,
		Gloss:      "gloss of " + lemma,
	}
}

func TestExport(t *testing.T) {
	records := []enrichment.Record{
		enrichedRecord("laufen", "de"),
		enrichedRecord("gehen", "de"),
		enrichedRecord("laufen", "de"), // duplicate lemma
		enrichedRecord("serendipity", "en"),
		enrichedRecord("szczęście", "pl"), // not part of the pair
	}

	dir := t.TempDir()
	result, err := Export(records, ExportOptions{
		TSVDir:         dir,
		NativeLanguage: "en",
		TargetLanguage: "de",
		ForeignNative:  true,
		NativeForeign:  true,
		NativeNative:   true,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.CardCounts[DeckForeignNative])
	assert.Equal(t, 2, result.CardCounts[DeckNativeForeign])
	assert.Equal(t, 1, result.CardCounts[DeckNativeNative])

	for _, name := range []string{"anki_de_en.tsv", "anki_en_de.tsv", "anki_en_en.tsv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestExport_DeckToggles(t *testing.T) {
	records := []enrichment.Record{enrichedRecord("laufen", "de")}

	dir := t.TempDir()
	result, err := Export(records, ExportOptions{
		TSVDir:         dir,
		NativeLanguage: "en",
		TargetLanguage: "de",
		ForeignNative:  true,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(dir, "anki_de_en.tsv"), result.Files[0])
}

func TestExport_APKG(t *testing.T) {
	records := []enrichment.Record{enrichedRecord("laufen", "de")}

	tsvDir := t.TempDir()
	apkgDir := t.TempDir()
	result, err := Export(records, ExportOptions{
		TSVDir:         tsvDir,
		APKGDir:        apkgDir,
		NativeLanguage: "en",
		TargetLanguage: "de",
		ForeignNative:  true,
		CreateAPKG:     true,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	_, err = os.Stat(filepath.Join(apkgDir, "anki_de_en.apkg"))
	assert.NoError(t, err)
}

func TestExport_IncompleteCardsAreFiltered(t *testing.T) {
	record := enrichedRecord("laufen", "de")
	record.Usage = "" // no context sentence, card cannot render

	dir := t.TempDir()
	result, err := Export([]enrichment.Record{record}, ExportOptions{
		TSVDir:         dir,
		NativeLanguage: "en",
		TargetLanguage: "de",
		ForeignNative:  true,
	}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
}
