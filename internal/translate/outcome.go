// Package translate renders documentation sections in other languages while
// keeping code spans untouched, and caches the results per section.
package translate

import "errors"

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrEmptyTranslation    = errors.New("provider returned an empty translation")
)

type Source int

const (
	// SourceOriginal means no translation was needed.
	SourceOriginal Source = iota
	SourceCached
	SourceTranslated
	// SourceFallback means translation failed and Text is the original.
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceOriginal:
		return "original"
	case SourceCached:
		return "cached"
	case SourceTranslated:
		return "translated"
	case SourceFallback:
		return "fallback"
	}
	return "unknown"
}

// Outcome is the text to show plus where it came from. Err is set only for
// SourceFallback.
type Outcome struct {
	Text   string
	Source Source
	Err    error
}

func (o Outcome) Fallback() bool {
	return o.Source == SourceFallback
}

func fallback(text string, err error) Outcome {
	return Outcome{Text: text, Source: SourceFallback, Err: err}
}
