package models

import (
	"strings"
	"time"
)

type Level string

const (
	LevelH1 Level = "h1"
	LevelH2 Level = "h2"
	LevelH3 Level = "h3"
	LevelH4 Level = "h4"
)

func (l Level) Valid() bool {
	switch l {
	case LevelH1, LevelH2, LevelH3, LevelH4:
		return true
	}
	return false
}

// Section is a titled chunk of a documentation page. Sections sharing a URL
// are ordered by ID to rebuild the page.
type Section struct {
	ID        int64     `json:"id" yaml:"id,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	URL       string    `json:"url" yaml:"url"`
	Level     Level     `json:"level" yaml:"level"`
	Language  string    `json:"language" yaml:"language,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Matches reports whether the title or content contains substr, ignoring case.
func (s Section) Matches(substr string) bool {
	needle := strings.ToLower(substr)
	return strings.Contains(strings.ToLower(s.Title), needle) ||
		strings.Contains(strings.ToLower(s.Content), needle)
}

// Translation holds a section's content in another language. There is at
// most one per (SectionID, Language).
type Translation struct {
	ID        int64     `json:"id"`
	SectionID int64     `json:"section_id"`
	Language  string    `json:"language"`
	Content   string    `json:"translated_content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page summarises all sections scraped from one URL.
type Page struct {
	URL            string `json:"url"`
	FirstSectionID int64  `json:"id"`
	Title          string `json:"title"`
	SectionCount   int    `json:"section_count"`
}
