package client

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is one selectable translation target
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// targetLangs are the languages the translation backend accepts, in the
// order the selector shows them.
var targetLangs = []string{"zh", "en", "ja", "ko", "fr", "de", "es", "ru", "pt", "it"}

// SupportedLanguages returns the selectable target languages with their
// English display names.
func SupportedLanguages() []Language {
	namer := display.English.Tags()

	langs := make([]Language, 0, len(targetLangs))
	for _, code := range targetLangs {
		tag := language.Make(code)
		langs = append(langs, Language{
			Code: code,
			Name: namer.Name(tag),
		})
	}
	return langs
}

// ValidateTargetLang checks that a language code is a well-formed BCP 47 tag
// and one of the supported targets, returning the canonical code.
func ValidateTargetLang(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", code, err)
	}

	base, _ := tag.Base()
	for _, supported := range targetLangs {
		if base.String() == supported {
			return supported, nil
		}
	}
	return "", fmt.Errorf("unsupported target language %q", code)
}
