package normalize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pronunciation replaces every literal occurrence of Find with Say.
type Pronunciation struct {
	Find string `yaml:"find"`
	Say  string `yaml:"say"`
}

// Table is applied entry by entry, in order, one pass each. Matching is on
// raw substrings, not words, so an entry must come before any shorter entry
// it contains (HTTPS before HTTP, kwargs before args).
type Table []Pronunciation

// DefaultTable covers the jargon that shows up in web framework docs.
var DefaultTable = Table{
	{Find: "PostgreSQL", Say: "Postgres Q L"},
	{Find: "MySQL", Say: "My S Q L"},
	{Find: "SQLite", Say: "S Q Lite"},
	{Find: "SQL", Say: "S Q L"},
	{Find: "ORM", Say: "O R M"},
	{Find: "HTTPS", Say: "H T T P S"},
	{Find: "HTTP", Say: "H T T P"},
	{Find: "URLconf", Say: "U R L conf"},
	{Find: "CSRF", Say: "C S R F"},
	{Find: "JSON", Say: "Jason"},
	{Find: "API", Say: "A P I"},
	{Find: "CLI", Say: "C L I"},
	{Find: "PyPI", Say: "pie pea eye"},
	{Find: "i18n", Say: "internationalization"},
	{Find: "l10n", Say: "localization"},
	{Find: "__init__", Say: "dunder init"},
	{Find: "kwargs", Say: "keyword arguments"},
	{Find: "args", Say: "arguments"},
}

// Apply runs the table over s. It is not idempotent.
func (t Table) Apply(s string) string {
	for _, p := range t {
		if p.Find == "" {
			continue
		}
		s = strings.ReplaceAll(s, p.Find, p.Say)
	}
	return s
}

// LoadTable reads an ordered list of find/say pairs from a YAML file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pronunciation table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse pronunciation table %s: %w", path, err)
	}
	for i, p := range t {
		if p.Find == "" {
			return nil, fmt.Errorf("pronunciation table %s: entry %d has empty find", path, i)
		}
	}
	return t, nil
}
