package models

import "strings"

const BaseLanguage = "en"

type Language struct {
	Tag  string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages is ordered; name lookups return the first hit.
var SupportedLanguages = []Language{
	{Tag: "en", Name: "English"},
	{Tag: "sw", Name: "Swahili"},
	{Tag: "fr", Name: "French"},
	{Tag: "es", Name: "Spanish"},
	{Tag: "de", Name: "German"},
	{Tag: "zh", Name: "Chinese"},
}

func IsSupported(tag string) bool {
	_, ok := LanguageName(tag)
	return ok
}

func LanguageName(tag string) (string, bool) {
	for _, l := range SupportedLanguages {
		if l.Tag == tag {
			return l.Name, true
		}
	}
	return "", false
}

// LanguageByName resolves a spoken display name such as "french" to its tag.
// The comparison is an exact, case-insensitive match.
func LanguageByName(name string) (string, bool) {
	for _, l := range SupportedLanguages {
		if strings.EqualFold(l.Name, name) {
			return l.Tag, true
		}
	}
	return "", false
}

// TranslationTargets returns every supported tag except the base language.
func TranslationTargets() []string {
	var tags []string
	for _, l := range SupportedLanguages {
		if l.Tag != BaseLanguage {
			tags = append(tags, l.Tag)
		}
	}
	return tags
}
