// Package voice turns "kibena ..." utterances into documentation lookups,
// translations and speech.
package voice

import (
	"context"

	"docvoice/internal/models"
	"docvoice/internal/translate"
)

type Kind int

const (
	KindRead Kind = iota + 1
	KindSearch
	KindTranslate
	KindHelp
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindSearch:
		return "search"
	case KindTranslate:
		return "translate"
	case KindHelp:
		return "help"
	}
	return "unknown"
}

// Result is the envelope every command produces. Response holds a string,
// a []SearchHit, or nil.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Response  any    `json:"response"`
	AudioURL  string `json:"audio_url,omitempty"`
	SectionID int64  `json:"section_id,omitempty"`
	Language  string `json:"language,omitempty"`
}

type SearchHit struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// HandlerFunc runs one command with the arguments its pattern captured.
type HandlerFunc func(ctx context.Context, args []string) Result

// DocumentStore finds sections by case-insensitive substring over title and
// content, ordered by ID.
type DocumentStore interface {
	FindSections(ctx context.Context, substr string, limit int) ([]models.Section, error)
	GetSection(ctx context.Context, id int64) (models.Section, error)
}

// Translator returns a section's content in lang, creating and storing the
// translation if needed. The outcome always carries usable text.
type Translator interface {
	GetOrCreate(ctx context.Context, section models.Section, lang string) translate.Outcome
}

// Speaker produces a URL for spoken text. An error means no audio.
type Speaker interface {
	AudioURL(ctx context.Context, text, lang string) (string, error)
}

// Observer is told about every dispatched command.
type Observer interface {
	CommandProcessed(kind string, success bool)
}
