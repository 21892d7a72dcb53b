package gemini

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/kindanki/internal/inference"
	"github.com/at-ishikawa/kindanki/internal/language"
)

// buildPrompt renders the German instruction prompt for one batch. The model
// is addressed in German regardless of the word language; the response keys
// are fixed so parsing does not depend on the language pair.
func buildPrompt(request inference.GenerateCardsRequest) string {
	nativeMeta, _ := language.GetMeta(request.NativeLanguage)
	targetMeta, _ := language.GetMeta(request.TargetLanguage)

	var builder strings.Builder
	builder.WriteString("Du bist ein Experte für Sprachenlernen und erstellst hochwertige Anki-Karteikarten.\n\n")
	builder.WriteString("SPRACHEN:\n")
	fmt.Fprintf(&builder, "- Muttersprache (Definitionen & Notes): %s (%s)\n",
		nativeMeta.GermanName, strings.ToUpper(request.NativeLanguage))
	fmt.Fprintf(&builder, "- Zielvokabel-Sprache: %s (%s)\n\n",
		targetMeta.GermanName, strings.ToUpper(request.TargetLanguage))
	builder.WriteString("WICHTIGE REGELN:\n")
	builder.WriteString("1. Verben IMMER im Infinitiv angeben\n")
	builder.WriteString("2. Nomen mit großem Anfangsbuchstaben, wo die Sprache es verlangt\n\n")

	builder.WriteString("AUFGABE: Gib für jede Vokabel NUR zurück:\n")
	if request.WordLanguage == request.TargetLanguage {
		fmt.Fprintf(&builder,
			"- definition: %se Definition (erst die im Kontext verwendete Bedeutung, danach optionale weitere häufige Bedeutung mit 'also:').\n",
			targetMeta.GermanName)
		fmt.Fprintf(&builder,
			"- gloss: %se Übersetzung, die zum Kontext passt (Verben im Infinitiv, mehrere Bedeutungen mit Komma).\n",
			nativeMeta.GermanName)
	} else {
		fmt.Fprintf(&builder,
			"- definition: %se Definition in einfachen Worten (erst Kontext-Bedeutung, danach optionale häufige Bedeutung mit 'auch:').\n",
			nativeMeta.GermanName)
		fmt.Fprintf(&builder,
			"- gloss: ein kurzes %ses Synonym oder eine Umschreibung mit einem Wort.\n",
			nativeMeta.GermanName)
	}
	builder.WriteString("- METADATEN: Liefere die Signale für Notes ausschließlich über die folgenden Schlüssel (falls nicht relevant, sinnvoll auf 'low' bzw. leer setzen):\n")
	builder.WriteString("  - notes: kurzer Hinweis in Muttersprache, nur wenn nötig\n")
	builder.WriteString("  - ambiguity: low/medium/high (immer setzen!)\n")
	builder.WriteString("  - sense: Kontext-Lesart (nur bei medium/high)\n")
	builder.WriteString("  - domain: Fachgebiet (z. B. 'jur.', 'IT'; bei Allgemeinsprache weglassen)\n")
	builder.WriteString("  - alternatives: Liste mit bis zu drei sinnvollen Alternativen\n")
	builder.WriteString("  - register: Stil (z. B. 'ugs.', 'formell'; bei neutral leer lassen)\n")
	builder.WriteString("  - false_friend: false bzw. kurzer String, wenn Stolperstein\n")
	builder.WriteString("  - collocations: Liste (max. zwei typische Kollokationen)\n")
	builder.WriteString("  - anchor: exakte Teilphrase (<=5 Wörter) aus dem Kontext\n")
	builder.WriteString("  - confidence: Zahl zwischen 0 und 1\n\n")
	builder.WriteString("⚠️ KONTEXT LESEN! Bedeutung muss zum Satz passen, Tonalität berücksichtigen.\n")
	builder.WriteString("⚠️ WICHTIG: Wort, Lemma, Kontext und Buch NICHT zurückgeben, nur die generierten Felder.\n\n")

	builder.WriteString("VOKABELN:\n\n")
	for i, word := range request.Words {
		fmt.Fprintf(&builder, "%d. Wort: %s\n", i+1, word.Word)
		fmt.Fprintf(&builder, "   Lemma: %s\n", word.Lemma)
		if word.Usage != "" {
			fmt.Fprintf(&builder, "   Kontext: %s\n", word.Usage)
		}
		if word.Book != "" && word.Book != "Unknown" {
			fmt.Fprintf(&builder, "   Buch: %s\n", word.Book)
		}
		builder.WriteString("\n")
	}

	builder.WriteString("AUSGABEFORMAT: Gib ausschließlich ein gültiges JSON-Array zurück, ohne Erklärungen oder Markdown.\n")
	builder.WriteString("Das Array enthält GENAU ein Objekt pro Vokabel, in derselben Reihenfolge wie oben.\n\n")
	builder.WriteString("Beispiel:\n")
	builder.WriteString(`[
  {
    "definition": "Definition Beispiel",
    "gloss": "Übersetzung Beispiel",
    "notes": "kurzer Hinweis",
    "ambiguity": "medium",
    "sense": "Artikel/Publikation",
    "domain": "jur.",
    "alternatives": ["Artikel", "Bericht"],
    "register": "formell",
    "false_friend": "eventuell != eventually",
    "collocations": ["to publish an article"],
    "anchor": "the article",
    "confidence": 0.82
  }
]
`)

	return builder.String()
}
