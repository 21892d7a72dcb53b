package anki

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildModel(t *testing.T) {
	t.Run("foreign to native", func(t *testing.T) {
		model, err := BuildModel(DeckForeignNative, "en", "de")
		require.NoError(t, err)

		assert.Equal(t, "Kindle DE→EN", model.Name)
		assert.Equal(t, []string{"DE_lemma", "Original_word", "DE_definition", "EN_gloss", "Context_HTML", "Book", "Notes"}, model.Fields)
		assert.False(t, model.Cloze)
		assert.Contains(t, model.FrontHTML, "{{DE_lemma}}")
		assert.Contains(t, model.BackHTML, "{{EN_gloss}}")
		assert.Contains(t, model.BackHTML, "{{#DE_definition}}")
		assert.Contains(t, model.CSS, ".answer")
	})

	t.Run("native to foreign is a cloze model", func(t *testing.T) {
		model, err := BuildModel(DeckNativeForeign, "en", "de")
		require.NoError(t, err)

		assert.Equal(t, "Kindle EN→DE", model.Name)
		assert.True(t, model.Cloze)
		assert.Contains(t, model.FrontHTML, "{{cloze:Context_HTML}}")
	})

	t.Run("native to native has no gloss", func(t *testing.T) {
		model, err := BuildModel(DeckNativeNative, "en", "de")
		require.NoError(t, err)

		assert.Equal(t, "Kindle EN→EN", model.Name)
		assert.Equal(t, []string{"EN_lemma", "Original_word", "EN_definition", "Context_HTML", "Book", "Notes"}, model.Fields)
		assert.NotContains(t, model.BackHTML, "definition\">{{EN_definition}}")
	})

	t.Run("unsupported language fails", func(t *testing.T) {
		_, err := BuildModel(DeckForeignNative, "en", "xx")
		require.Error(t, err)
	})
}

func TestDeckName(t *testing.T) {
	assert.Equal(t, "Kindle::DE→EN", DeckName(DeckForeignNative, "en", "de"))
	assert.Equal(t, "Kindle::EN→DE", DeckName(DeckNativeForeign, "en", "de"))
	assert.Equal(t, "Kindle::EN→EN", DeckName(DeckNativeNative, "en", "de"))
}
