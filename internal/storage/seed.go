package storage

import (
	"context"
	"fmt"
	"os"

	"docvoice/internal/models"

	"gopkg.in/yaml.v3"
)

// SeedPage is one documentation page in a seed file:
//
//	- url: https://docs.djangoproject.com/en/5.2/topics/db/models/
//	  sections:
//	    - title: Models
//	      level: h1
//	      content: A model is the single, definitive source of information...
type SeedPage struct {
	URL      string           `yaml:"url"`
	Sections []models.Section `yaml:"sections"`
}

// SectionSaver is implemented by DB and Memory.
type SectionSaver interface {
	SaveSections(ctx context.Context, url string, sections []models.Section) ([]models.Section, error)
}

func ReadSeed(path string) ([]SeedPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var pages []SeedPage
	if err := yaml.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	for _, p := range pages {
		if p.URL == "" {
			return nil, fmt.Errorf("seed %s: page without url", path)
		}
		for i := range p.Sections {
			if p.Sections[i].Level == "" {
				p.Sections[i].Level = models.LevelH2
			}
			if !p.Sections[i].Level.Valid() {
				return nil, fmt.Errorf("seed %s: %s: invalid level %q", path, p.URL, p.Sections[i].Level)
			}
		}
	}
	return pages, nil
}

// Seed saves every page and returns the number of sections written.
func Seed(ctx context.Context, saver SectionSaver, pages []SeedPage) (int, error) {
	n := 0
	for _, p := range pages {
		saved, err := saver.SaveSections(ctx, p.URL, p.Sections)
		if err != nil {
			return n, fmt.Errorf("seed %s: %w", p.URL, err)
		}
		n += len(saved)
	}
	return n, nil
}
