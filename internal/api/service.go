package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"docvoice/internal/models"
	"docvoice/internal/normalize"
	"docvoice/internal/voice"
)

const (
	searchLimit   = 50
	previewLength = 300
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Catalog serves whole pages. Lookups by substring go through
// DocsService.Lookup so they can come from the search index instead.
type Catalog interface {
	GetSection(ctx context.Context, id int64) (models.Section, error)
	SectionsByURL(ctx context.Context, url string) ([]models.Section, error)
	ListPages(ctx context.Context) ([]models.Page, error)
}

type DocsService struct {
	Catalog    Catalog
	Lookup     voice.DocumentStore
	Translator voice.Translator
	Speaker    voice.Speaker
	Speech     *normalize.Normalizer
	Logger     *slog.Logger
}

type SearchResult struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type SectionView struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	URL      string       `json:"url"`
	Level    models.Level `json:"level"`
	Language string       `json:"language"`
	Content  string       `json:"content"`
	AudioURL string       `json:"audio_url,omitempty"`
}

type PageView struct {
	URL      string        `json:"url"`
	Title    string        `json:"title"`
	Language string        `json:"language"`
	Sections []SectionView `json:"sections"`
}

func (s *DocsService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func checkLanguage(lang string) error {
	if !models.IsSupported(lang) {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return nil
}

// content returns the section's text in lang, falling back to the original
// when translation fails.
func (s *DocsService) content(ctx context.Context, section models.Section, lang string) string {
	if lang == models.BaseLanguage {
		return section.Content
	}
	out := s.Translator.GetOrCreate(ctx, section, lang)
	if out.Fallback() {
		s.logger().Warn("translation unavailable, serving original content",
			slog.Int64("section_id", section.ID), slog.String("language", lang), slog.Any("error", out.Err))
	}
	return out.Text
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "..."
}

func (s *DocsService) Search(ctx context.Context, query, lang string) ([]SearchResult, error) {
	if err := checkLanguage(lang); err != nil {
		return nil, err
	}
	if query == "" {
		return []SearchResult{}, nil
	}

	sections, err := s.Lookup.FindSections(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(sections))
	for _, sec := range sections {
		results = append(results, SearchResult{
			ID:      sec.ID,
			Title:   sec.Title,
			URL:     sec.URL,
			Content: preview(s.content(ctx, sec, lang)),
		})
	}
	return results, nil
}

// Section renders one section for display and attaches spoken audio when it
// can be produced.
func (s *DocsService) Section(ctx context.Context, id int64, lang string) (SectionView, error) {
	if err := checkLanguage(lang); err != nil {
		return SectionView{}, err
	}
	sec, err := s.Catalog.GetSection(ctx, id)
	if err != nil {
		return SectionView{}, err
	}

	text := s.content(ctx, sec, lang)
	view := s.view(sec, lang, text)
	view.AudioURL = s.audio(ctx, text, lang)
	return view, nil
}

func (s *DocsService) audio(ctx context.Context, text, lang string) string {
	url, err := s.Speaker.AudioURL(ctx, s.Speech.ForSpeech(text), lang)
	if err != nil {
		s.logger().Warn("speech synthesis failed", slog.String("language", lang), slog.Any("error", err))
		return ""
	}
	return url
}

func (s *DocsService) view(sec models.Section, lang, text string) SectionView {
	return SectionView{
		ID:       sec.ID,
		Title:    sec.Title,
		URL:      sec.URL,
		Level:    sec.Level,
		Language: lang,
		Content:  normalize.ForDisplay(text),
	}
}

func (s *DocsService) Pages(ctx context.Context) ([]models.Page, error) {
	pages, err := s.Catalog.ListPages(ctx)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []models.Page{}
	}
	return pages, nil
}

// Page returns every section sharing the URL of section id, in order.
func (s *DocsService) Page(ctx context.Context, id int64, lang string) (PageView, error) {
	if err := checkLanguage(lang); err != nil {
		return PageView{}, err
	}
	first, err := s.Catalog.GetSection(ctx, id)
	if err != nil {
		return PageView{}, err
	}
	sections, err := s.Catalog.SectionsByURL(ctx, first.URL)
	if err != nil {
		return PageView{}, err
	}

	page := PageView{URL: first.URL, Title: first.Title, Language: lang, Sections: make([]SectionView, 0, len(sections))}
	for _, sec := range sections {
		page.Sections = append(page.Sections, s.view(sec, lang, s.content(ctx, sec, lang)))
	}
	return page, nil
}

// Audio speaks arbitrary text as given.
func (s *DocsService) Audio(ctx context.Context, text, lang string) (string, error) {
	if err := checkLanguage(lang); err != nil {
		return "", err
	}
	return s.Speaker.AudioURL(ctx, text, lang)
}
