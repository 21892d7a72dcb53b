package anki

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/at-ishikawa/kindanki/internal/language"
)

//go:embed templates/front.html.tmpl
var frontTemplateSource string

//go:embed templates/back.html.tmpl
var backTemplateSource string

//go:embed templates/base.css
var baseCSS string

//go:embed templates/night_mode.css
var nightModeCSS string

//go:embed templates/answer_blue.css
var answerBlueCSS string

//go:embed templates/answer_red.css
var answerRedCSS string

//go:embed templates/answer_teal.css
var answerTealCSS string

// NoteModel is a fully rendered Anki note type: stable ID, ordered fields
// and the mustache templates Anki stores inside the deck package.
type NoteModel struct {
	ID        int64
	Name      string
	Fields    []string
	FrontHTML string
	BackHTML  string
	CSS       string
	Cloze     bool
}

// ModelID derives a stable ID from the deck type and language pair, so
// re-imports update existing notes instead of duplicating them.
func ModelID(deckType DeckType, nativeLanguage, targetLanguage string) int64 {
	digest := md5.Sum([]byte(fmt.Sprintf("Kindle::%s:%s:%s", deckType, nativeLanguage, targetLanguage)))
	return int64(binary.BigEndian.Uint32(digest[:4]) & 0x7FFFFFFF)
}

// NoteGUID derives the note identity from the lemma, model and deck type.
// Forward and reverse decks of the same lemma keep distinct GUIDs so one
// does not overwrite the other on import.
func NoteGUID(lemma string, modelID int64, deckType DeckType) int64 {
	normalized := strings.ToLower(strings.TrimSpace(lemma))
	digest := md5.Sum([]byte(fmt.Sprintf("%d_%s_%s", modelID, deckType, normalized)))
	return int64(binary.BigEndian.Uint64(digest[:8]))
}

// DeckName returns the Anki deck name for the orientation, e.g.
// "Kindle::DE→EN".
func DeckName(deckType DeckType, nativeLanguage, targetLanguage string) string {
	native := strings.ToUpper(nativeLanguage)
	target := strings.ToUpper(targetLanguage)
	switch deckType {
	case DeckNativeForeign:
		return "Kindle::" + native + "→" + target
	case DeckNativeNative:
		return "Kindle::" + native + "→" + native
	default:
		return "Kindle::" + target + "→" + native
	}
}

type templateData struct {
	TypeLabel       string
	QuestionField   string
	AnswerField     string
	DefinitionField string
	ContextRef      string
}

// BuildModel renders the note model for one deck orientation.
func BuildModel(deckType DeckType, nativeLanguage, targetLanguage string) (NoteModel, error) {
	nativeMeta, err := language.GetMeta(nativeLanguage)
	if err != nil {
		return NoteModel{}, fmt.Errorf("language.GetMeta(%s) > %w", nativeLanguage, err)
	}
	targetMeta, err := language.GetMeta(targetLanguage)
	if err != nil {
		return NoteModel{}, fmt.Errorf("language.GetMeta(%s) > %w", targetLanguage, err)
	}

	nativeLemma := language.FieldKey(nativeLanguage, "lemma")
	nativeDefinition := language.FieldKey(nativeLanguage, "definition")
	nativeGloss := language.FieldKey(nativeLanguage, "gloss")
	targetLemma := language.FieldKey(targetLanguage, "lemma")
	targetDefinition := language.FieldKey(targetLanguage, "definition")

	model := NoteModel{
		ID:   ModelID(deckType, nativeLanguage, targetLanguage),
		Name: "Kindle " + strings.ToUpper(targetLanguage) + "→" + strings.ToUpper(nativeLanguage),
	}
	data := templateData{ContextRef: "Context_HTML"}

	switch deckType {
	case DeckForeignNative:
		model.Fields = []string{targetLemma, "Original_word", targetDefinition, nativeGloss, "Context_HTML", "Book", "Notes"}
		model.CSS = baseCSS + answerBlueCSS + nightModeCSS
		data.TypeLabel = targetMeta.EnglishName + " → " + nativeMeta.EnglishName
		data.QuestionField = targetLemma
		data.AnswerField = nativeGloss
		data.DefinitionField = targetDefinition
	case DeckNativeForeign:
		model.Name = "Kindle " + strings.ToUpper(nativeLanguage) + "→" + strings.ToUpper(targetLanguage)
		model.Fields = []string{nativeGloss, targetLemma, "Original_word", targetDefinition, "Context_HTML", "Book", "Notes"}
		model.CSS = baseCSS + answerRedCSS + nightModeCSS
		model.Cloze = true
		data.TypeLabel = nativeMeta.EnglishName + " → " + targetMeta.EnglishName
		data.QuestionField = nativeGloss
		data.AnswerField = targetLemma
		data.DefinitionField = targetDefinition
		data.ContextRef = "cloze:Context_HTML"
	case DeckNativeNative:
		model.Name = "Kindle " + strings.ToUpper(nativeLanguage) + "→" + strings.ToUpper(nativeLanguage)
		model.Fields = []string{nativeLemma, "Original_word", nativeDefinition, "Context_HTML", "Book", "Notes"}
		model.CSS = baseCSS + answerTealCSS + nightModeCSS
		data.TypeLabel = nativeMeta.EnglishName + " → " + nativeMeta.EnglishName
		data.QuestionField = nativeLemma
		data.AnswerField = nativeDefinition
	default:
		return NoteModel{}, fmt.Errorf("unknown deck type %q", deckType)
	}

	model.FrontHTML, err = renderCardTemplate("front", frontTemplateSource, data)
	if err != nil {
		return NoteModel{}, fmt.Errorf("renderCardTemplate(front) > %w", err)
	}
	model.BackHTML, err = renderCardTemplate("back", backTemplateSource, data)
	if err != nil {
		return NoteModel{}, fmt.Errorf("renderCardTemplate(back) > %w", err)
	}
	return model, nil
}

// renderCardTemplate uses [[ ]] delimiters because the rendered output
// itself is full of Anki's {{ }} mustaches.
func renderCardTemplate(name, source string, data templateData) (string, error) {
	tmpl, err := template.New(name).Delims("[[", "]]").Parse(source)
	if err != nil {
		return "", fmt.Errorf("template.Parse > %w", err)
	}
	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, data); err != nil {
		return "", fmt.Errorf("tmpl.Execute > %w", err)
	}
	return buffer.String(), nil
}
