package gemini

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNotesLine(t *testing.T) {
	tests := []struct {
		name     string
		metadata CardMetadata
		expected string
	}{
		{
			name:     "empty metadata yields empty line",
			metadata: CardMetadata{},
			expected: "",
		},
		{
			name: "false friend warning comes first",
			metadata: CardMetadata{
				Notes:       "auch: eventuell",
				FalseFriend: "eventuell != eventually",
			},
			expected: "False Friend: eventuell != eventually · auch: eventuell",
		},
		{
			name: "boolean false friend uses the generic warning",
			metadata: CardMetadata{
				FalseFriend: "true",
			},
			expected: "False Friend beachten",
		},
		{
			name: "sense only appears for medium or high ambiguity",
			metadata: CardMetadata{
				Ambiguity: "low",
				Sense:     "Artikel/Publikation",
			},
			expected: "",
		},
		{
			name: "sense appears for high ambiguity",
			metadata: CardMetadata{
				Ambiguity: "high",
				Sense:     "Artikel/Publikation",
			},
			expected: "Sinn: Artikel/Publikation",
		},
		{
			name: "generic domain and neutral register are dropped",
			metadata: CardMetadata{
				Domain:   "allgemein",
				Register: "neutral",
				Notes:    "kurzer Hinweis",
			},
			expected: "kurzer Hinweis",
		},
		{
			name: "domain and register are rendered",
			metadata: CardMetadata{
				Domain:   "jur.",
				Register: "formell",
			},
			expected: "jur. · Register: formell",
		},
		{
			name: "alternatives are deduped and capped at three",
			metadata: CardMetadata{
				Alternatives: []string{"Artikel", "artikel", "Bericht", "Beitrag", "Meldung"},
			},
			expected: "Alternativen: Artikel, Bericht, Beitrag",
		},
		{
			name: "only the first collocation is used",
			metadata: CardMetadata{
				Collocations: []string{"to publish an article", "to write an article"},
			},
			expected: "to publish an article",
		},
		{
			name: "full metadata in canonical order",
			metadata: CardMetadata{
				Notes:        "auch: Klausel",
				Ambiguity:    "medium",
				Sense:        "Artikel/Publikation",
				Domain:       "jur.",
				Register:     "formell",
				Alternatives: []string{"Artikel", "Bericht"},
				FalseFriend:  "eventuell != eventually",
				Collocations: []string{"to publish an article"},
			},
			expected: "False Friend: eventuell != eventually · auch: Klausel · Sinn: Artikel/Publikation · jur. · Register: formell · Alternativen: Artikel, Bericht · to publish an article",
		},
		{
			name: "whitespace is collapsed",
			metadata: CardMetadata{
				Notes: "  auch:   funktionieren \n",
			},
			expected: "auch: funktionieren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildNotesLine(tt.metadata))
		})
	}
}

func TestBuildNotesLine_LengthCap(t *testing.T) {
	long := strings.Repeat("x", 292)
	metadata := CardMetadata{
		Notes:        long,
		Domain:       "jur.",
		Collocations: []string{"kurz"},
	}

	result := BuildNotesLine(metadata)
	assert.LessOrEqual(t, len(result), notesMaxLength)
	// The oversized fragment is kept, later fragments that no longer fit
	// are skipped rather than truncated.
	assert.Contains(t, result, long)
	assert.Contains(t, result, "jur.")
	assert.NotContains(t, result, "kurz")
}
