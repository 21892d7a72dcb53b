// Package language holds the supported-language registry and the naming
// helpers shared by prompts, cache keys and export file names.
package language

import (
	"fmt"
	"strings"
)

// Meta describes one supported language.
type Meta struct {
	Code        string
	Autonym     string
	EnglishName string
	GermanName  string
}

var supported = map[string]Meta{
	"de": {Code: "de", Autonym: "Deutsch", EnglishName: "German", GermanName: "Deutsch"},
	"en": {Code: "en", Autonym: "English", EnglishName: "English", GermanName: "Englisch"},
	"fr": {Code: "fr", Autonym: "Français", EnglishName: "French", GermanName: "Französisch"},
	"es": {Code: "es", Autonym: "Español", EnglishName: "Spanish", GermanName: "Spanisch"},
	"pl": {Code: "pl", Autonym: "Polski", EnglishName: "Polish", GermanName: "Polnisch"},
}

// NormalizeCode reduces Kindle language tags like "en_US" or "DE" to a
// bare lowercase ISO code.
func NormalizeCode(lang string) string {
	if lang == "" {
		return ""
	}
	code, _, _ := strings.Cut(lang, "_")
	return strings.ToLower(code)
}

// GetMeta returns metadata for a supported language code.
func GetMeta(code string) (Meta, error) {
	meta, ok := supported[strings.ToLower(code)]
	if !ok {
		return Meta{}, fmt.Errorf("unsupported language code %q. Supported: %s", code, strings.Join(SupportedCodes(), ", "))
	}
	return meta, nil
}

// IsSupported reports whether code names a supported language.
func IsSupported(code string) bool {
	_, ok := supported[strings.ToLower(code)]
	return ok
}

// SupportedCodes returns the supported language codes in a stable order.
func SupportedCodes() []string {
	return []string{"de", "en", "fr", "es", "pl"}
}

// FieldKey builds structured card field names like "EN_lemma".
func FieldKey(code, suffix string) string {
	return strings.ToUpper(code) + "_" + suffix
}

// Pair returns the canonical deck/file prefix for two codes, e.g. "de_en".
func Pair(first, second string) string {
	return strings.ToLower(first) + "_" + strings.ToLower(second)
}
