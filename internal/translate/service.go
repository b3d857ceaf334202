package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docvoice/internal/models"
	"docvoice/internal/normalize"
	"docvoice/internal/storage"
)

// Store persists translations. GetTranslation returns storage.ErrNotFound
// when there is none.
type Store interface {
	GetTranslation(ctx context.Context, sectionID int64, lang string) (models.Translation, error)
	SaveTranslation(ctx context.Context, t models.Translation, overwrite bool) error
	ListSections(ctx context.Context, lang string) ([]models.Section, error)
}

// Recorder counts translation outcomes.
type Recorder interface {
	TranslationDone(source string)
}

type Service struct {
	provider Provider
	store    Store
	logger   *slog.Logger
	recorder Recorder
	// pause between provider calls in TranslateAll
	pause time.Duration
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithPause(d time.Duration) Option {
	return func(s *Service) { s.pause = d }
}

func NewService(provider Provider, store Store, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		store:    store,
		logger:   slog.Default(),
		pause:    time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TranslateText translates text into lang with code spans protected. When
// the provider fails the original text comes back as a fallback outcome.
func (s *Service) TranslateText(ctx context.Context, text, lang string) Outcome {
	if text == "" || lang == "" || lang == models.BaseLanguage {
		return Outcome{Text: text, Source: SourceOriginal}
	}
	name, ok := models.LanguageName(lang)
	if !ok {
		return fallback(text, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang))
	}

	extracted := normalize.Extract(text)
	translated, err := s.provider.Translate(ctx, extracted.Text, name)
	if err != nil {
		return fallback(text, err)
	}
	if strings.TrimSpace(translated) == "" {
		return fallback(text, ErrEmptyTranslation)
	}
	return Outcome{Text: extracted.Restore(translated), Source: SourceTranslated}
}

// GetOrCreate returns the stored translation of section into lang, or
// translates and stores it. Fallback outcomes are not stored, so the next
// call tries the provider again.
func (s *Service) GetOrCreate(ctx context.Context, section models.Section, lang string) Outcome {
	out := s.getOrCreate(ctx, section, lang)
	if s.recorder != nil {
		s.recorder.TranslationDone(out.Source.String())
	}
	return out
}

func (s *Service) getOrCreate(ctx context.Context, section models.Section, lang string) Outcome {
	if lang == "" || lang == models.BaseLanguage || lang == section.Language {
		return Outcome{Text: section.Content, Source: SourceOriginal}
	}

	existing, err := s.store.GetTranslation(ctx, section.ID, lang)
	if err == nil {
		return Outcome{Text: existing.Content, Source: SourceCached}
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fallback(section.Content, fmt.Errorf("lookup translation: %w", err))
	}

	out := s.TranslateText(ctx, section.Content, lang)
	if out.Source != SourceTranslated {
		return out
	}

	err = s.store.SaveTranslation(ctx, models.Translation{
		SectionID: section.ID,
		Language:  lang,
		Content:   out.Text,
	}, false)
	if err != nil {
		s.logger.Warn("failed to store translation",
			slog.Int64("section_id", section.ID), slog.String("language", lang), slog.String("error", err.Error()))
	}
	return out
}

// Summary counts what TranslateAll did.
type Summary struct {
	Translated int
	Skipped    int
	Failed     int
}

// TranslateAll translates every base-language section into langs (all
// supported targets when empty). Existing translations are skipped unless
// force is set, in which case they are replaced.
func (s *Service) TranslateAll(ctx context.Context, langs []string, force bool) (Summary, error) {
	var sum Summary

	if len(langs) == 0 {
		langs = models.TranslationTargets()
	}
	for _, l := range langs {
		if !models.IsSupported(l) || l == models.BaseLanguage {
			return sum, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, l)
		}
	}

	sections, err := s.store.ListSections(ctx, models.BaseLanguage)
	if err != nil {
		return sum, fmt.Errorf("list sections: %w", err)
	}
	s.logger.Info("translating sections", slog.Int("sections", len(sections)), slog.Int("languages", len(langs)))

	first := true
	for _, section := range sections {
		for _, lang := range langs {
			_, err := s.store.GetTranslation(ctx, section.ID, lang)
			exists := err == nil
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return sum, fmt.Errorf("lookup translation: %w", err)
			}
			if exists && !force {
				s.logger.Debug("skipping existing translation", slog.String("title", section.Title), slog.String("language", lang))
				sum.Skipped++
				continue
			}

			if !first {
				if err := sleep(ctx, s.pause); err != nil {
					return sum, err
				}
			}
			first = false

			out := s.TranslateText(ctx, section.Content, lang)
			if out.Fallback() {
				s.logger.Warn("translation failed",
					slog.String("title", section.Title), slog.String("language", lang), slog.Any("error", out.Err))
				sum.Failed++
				continue
			}

			err = s.store.SaveTranslation(ctx, models.Translation{
				SectionID: section.ID,
				Language:  lang,
				Content:   out.Text,
			}, exists)
			if err != nil {
				return sum, err
			}
			if exists {
				s.logger.Info("updated translation", slog.String("title", section.Title), slog.String("language", lang))
			} else {
				s.logger.Info("created translation", slog.String("title", section.Title), slog.String("language", lang))
			}
			sum.Translated++
		}
	}
	return sum, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
