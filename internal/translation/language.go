package translation

import (
	"errors"
	"fmt"
)

// ErrUnknownLanguage is returned for a language code outside the table.
var ErrUnknownLanguage = errors.New("unknown language")

// Language is a selectable display language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SourceLanguage is the language reports are generated in.
var SourceLanguage = Language{Code: "en", Name: "English"}

// Languages lists the supported display languages.
var Languages = []Language{
	SourceLanguage,
	{Code: "hi", Name: "Hindi"},
	{Code: "bn", Name: "Bengali"},
}

// LookupLanguage resolves a language code.
func LookupLanguage(code string) (Language, error) {
	for _, l := range Languages {
		if l.Code == code {
			return l, nil
		}
	}
	return Language{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
}

// IsSource reports whether l is the generation language (no translation needed).
func (l Language) IsSource() bool {
	return l.Code == SourceLanguage.Code
}
