package models

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Book language codes accepted by the catalog.
const (
	LangSpanish    = "es"
	LangEnglish    = "en"
	LangFrench     = "fr"
	LangGerman     = "ge"
	LangPortuguese = "pt"
	LangOther      = "other"

	DefaultLanguage = LangEnglish
)

// LanguageCodes lists the codes in display order.
var LanguageCodes = []string{LangSpanish, LangEnglish, LangFrench, LangGerman, LangPortuguese, LangOther}

// "ge" is the catalog's legacy code for German, not a BCP 47 tag.
var languageTags = map[string]language.Tag{
	LangSpanish:    language.Spanish,
	LangEnglish:    language.English,
	LangFrench:     language.French,
	LangGerman:     language.German,
	LangPortuguese: language.Portuguese,
}

func IsLanguage(code string) bool {
	if code == LangOther {
		return true
	}
	_, ok := languageTags[code]
	return ok
}

// LanguageDisplay returns the English display name for a catalog language code.
func LanguageDisplay(code string) string {
	tag, ok := languageTags[code]
	if !ok {
		if code == LangOther {
			return "Other"
		}
		return code
	}
	return display.English.Languages().Name(tag)
}
