package gemini

import (
	"strings"
)

const (
	notesSeparator = " · "
	notesMaxLength = 300
)

var genericDomains = map[string]struct{}{
	"general":   {},
	"generic":   {},
	"allgemein": {},
	"neutral":   {},
	"none":      {},
	"standard":  {},
}

var neutralRegisters = map[string]struct{}{
	"neutral":         {},
	"standard":        {},
	"normal":          {},
	"allgemein":       {},
	"formell-neutral": {},
}

// CardMetadata holds the structured signals the model returns alongside a
// definition. It is the single source for the rendered notes line.
type CardMetadata struct {
	Notes        string
	Ambiguity    string
	Sense        string
	Domain       string
	Register     string
	Alternatives []string
	FalseFriend  string
	Collocations []string
	Anchor       string
	Confidence   float64
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func dedupePreserveOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var result []string
	for _, item := range items {
		item = collapseSpaces(item)
		lowered := strings.ToLower(item)
		if lowered == "" {
			continue
		}
		if _, ok := seen[lowered]; ok {
			continue
		}
		seen[lowered] = struct{}{}
		result = append(result, item)
	}
	return result
}

// BuildNotesLine renders the metadata into one deterministic line. Fragment
// order is fixed: false friend warning, free-form notes, sense when the
// ambiguity is medium or high, non-generic domain, non-neutral register, up
// to three alternatives, one collocation. Fragments that would push the line
// past the length cap are skipped.
func BuildNotesLine(metadata CardMetadata) string {
	var components []string

	tryAdd := func(fragment string) {
		fragment = collapseSpaces(fragment)
		if fragment == "" {
			return
		}
		projection := fragment
		if len(components) > 0 {
			projection = strings.Join(components, notesSeparator) + notesSeparator + fragment
		}
		if len(projection) <= notesMaxLength {
			components = append(components, fragment)
		}
	}

	if falseFriend := collapseSpaces(metadata.FalseFriend); falseFriend != "" {
		if strings.EqualFold(falseFriend, "true") {
			tryAdd("False Friend beachten")
		} else {
			tryAdd("False Friend: " + falseFriend)
		}
	}

	tryAdd(metadata.Notes)

	switch strings.ToLower(collapseSpaces(metadata.Ambiguity)) {
	case "medium", "high", "hoch":
		if sense := collapseSpaces(metadata.Sense); sense != "" {
			tryAdd("Sinn: " + sense)
		}
	}

	if domain := collapseSpaces(metadata.Domain); domain != "" {
		if _, generic := genericDomains[strings.ToLower(domain)]; !generic {
			tryAdd(domain)
		}
	}

	if register := collapseSpaces(metadata.Register); register != "" {
		if _, neutral := neutralRegisters[strings.ToLower(register)]; !neutral {
			tryAdd("Register: " + register)
		}
	}

	alternatives := dedupePreserveOrder(metadata.Alternatives)
	if len(alternatives) > 3 {
		alternatives = alternatives[:3]
	}
	if len(alternatives) > 0 {
		tryAdd("Alternativen: " + strings.Join(alternatives, ", "))
	}

	if collocations := dedupePreserveOrder(metadata.Collocations); len(collocations) > 0 {
		tryAdd(collocations[0])
	}

	return strings.Join(components, notesSeparator)
}
