package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/at-ishikawa/kindanki/internal/language"
)

// languageValue is a pflag.Value that only accepts supported language codes.
type languageValue struct {
	code string
}

var _ pflag.Value = (*languageValue)(nil)

func (v *languageValue) String() string {
	return v.code
}

func (v *languageValue) Set(value string) error {
	code := strings.ToLower(strings.TrimSpace(value))
	if !language.IsSupported(code) {
		return fmt.Errorf("unsupported language %q, supported: %s", value, strings.Join(language.SupportedCodes(), ", "))
	}
	v.code = code
	return nil
}

func (v *languageValue) Type() string {
	return "language"
}
