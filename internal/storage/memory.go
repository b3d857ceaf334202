package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"docvoice/internal/models"
)

type translationKey struct {
	sectionID int64
	lang      string
}

// Memory is an in-process store with the same behaviour as DB. Sections are
// kept in ID order.
type Memory struct {
	mu           sync.RWMutex
	sections     []models.Section
	translations map[translationKey]models.Translation
	nextID       int64
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		translations: make(map[translationKey]models.Translation),
		nextID:       1,
		now:          time.Now,
	}
}

func (m *Memory) SaveSections(_ context.Context, url string, sections []models.Section) ([]models.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make([]models.Section, 0, len(sections))
	for _, s := range sections {
		s.URL = url
		s.Content = strings.TrimSpace(s.Content)
		if s.Language == "" {
			s.Language = models.BaseLanguage
		}
		now := m.now()
		s.UpdatedAt = now

		if i := m.indexOf(url, s.Title, s.Level); i >= 0 {
			s.ID = m.sections[i].ID
			s.CreatedAt = m.sections[i].CreatedAt
			m.sections[i] = s
		} else {
			s.ID = m.nextID
			s.CreatedAt = now
			m.nextID++
			m.sections = append(m.sections, s)
		}
		saved = append(saved, s)
	}
	return saved, nil
}

func (m *Memory) indexOf(url, title string, level models.Level) int {
	for i, s := range m.sections {
		if s.URL == url && s.Title == title && s.Level == level {
			return i
		}
	}
	return -1
}

func (m *Memory) FindSections(_ context.Context, substr string, limit int) ([]models.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Section
	for _, s := range m.sections {
		if limit > 0 && len(out) >= limit {
			break
		}
		if s.Matches(substr) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) GetSection(_ context.Context, id int64) (models.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.sections {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Section{}, ErrNotFound
}

func (m *Memory) SectionsByURL(_ context.Context, url string) ([]models.Section, error) {
	return m.filter(func(s models.Section) bool { return s.URL == url }), nil
}

func (m *Memory) ListSections(_ context.Context, lang string) ([]models.Section, error) {
	return m.filter(func(s models.Section) bool { return s.Language == lang }), nil
}

func (m *Memory) ListPages(_ context.Context) ([]models.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pages []models.Page
	index := make(map[string]int)
	for _, s := range m.sections {
		if i, ok := index[s.URL]; ok {
			pages[i].SectionCount++
			continue
		}
		index[s.URL] = len(pages)
		pages = append(pages, models.Page{URL: s.URL, FirstSectionID: s.ID, Title: s.Title, SectionCount: 1})
	}
	return pages, nil
}

func (m *Memory) IterateSections(_ context.Context, fn func(models.Section) error) error {
	for _, s := range m.filter(func(models.Section) bool { return true }) {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) GetTranslation(_ context.Context, sectionID int64, lang string) (models.Translation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.translations[translationKey{sectionID, lang}]
	if !ok {
		return models.Translation{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) SaveTranslation(_ context.Context, t models.Translation, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := translationKey{t.SectionID, t.Language}
	now := m.now()
	if existing, ok := m.translations[key]; ok {
		if !overwrite {
			return nil
		}
		existing.Content = t.Content
		existing.UpdatedAt = now
		m.translations[key] = existing
		return nil
	}
	t.ID = int64(len(m.translations) + 1)
	t.CreatedAt, t.UpdatedAt = now, now
	m.translations[key] = t
	return nil
}

func (m *Memory) filter(keep func(models.Section) bool) []models.Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Section
	for _, s := range m.sections {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
