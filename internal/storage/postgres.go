package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docvoice/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS sections (
	id            BIGSERIAL PRIMARY KEY,
	title         VARCHAR(255) NOT NULL,
	content       TEXT NOT NULL DEFAULT '',
	language      VARCHAR(10) NOT NULL DEFAULT 'en',
	url           TEXT NOT NULL,
	section_level VARCHAR(2) NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (url, title, section_level)
);

CREATE TABLE IF NOT EXISTS translations (
	id                 BIGSERIAL PRIMARY KEY,
	section_id         BIGINT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
	language           VARCHAR(10) NOT NULL,
	translated_content TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (section_id, language)
);
`

const sectionColumns = `id, title, content, language, url, section_level, created_at, updated_at`

type DB struct {
	Pool *pgxpool.Pool
}

func NewDB(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SaveSections upserts the sections of one page, keyed on (url, title, level),
// and returns them with their IDs in input order.
func (db *DB) SaveSections(ctx context.Context, url string, sections []models.Section) ([]models.Section, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO sections (title, content, language, url, section_level)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url, title, section_level)
		DO UPDATE SET content = EXCLUDED.content, language = EXCLUDED.language, updated_at = now()
		RETURNING ` + sectionColumns

	saved := make([]models.Section, 0, len(sections))
	for i, s := range sections {
		lang := s.Language
		if lang == "" {
			lang = models.BaseLanguage
		}
		row := tx.QueryRow(ctx, query, s.Title, strings.TrimSpace(s.Content), lang, url, string(s.Level))
		out, err := scanSection(row)
		if err != nil {
			return nil, fmt.Errorf("failed to save section %d (%s): %w", i, s.Title, err)
		}
		saved = append(saved, out)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (db *DB) FindSections(ctx context.Context, substr string, limit int) ([]models.Section, error) {
	pattern := "%" + escapeLike(substr) + "%"
	rows, err := db.Pool.Query(ctx, `
		SELECT `+sectionColumns+` FROM sections
		WHERE title ILIKE $1 ESCAPE '\' OR content ILIKE $1 ESCAPE '\'
		ORDER BY id
		LIMIT NULLIF($2, 0)`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("find sections: %w", err)
	}
	return collectSections(rows)
}

func (db *DB) GetSection(ctx context.Context, id int64) (models.Section, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections WHERE id = $1`, id)
	s, err := scanSection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Section{}, ErrNotFound
	}
	if err != nil {
		return models.Section{}, fmt.Errorf("get section %d: %w", id, err)
	}
	return s, nil
}

func (db *DB) SectionsByURL(ctx context.Context, url string) ([]models.Section, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+sectionColumns+` FROM sections WHERE url = $1 ORDER BY id`, url)
	if err != nil {
		return nil, fmt.Errorf("sections by url: %w", err)
	}
	return collectSections(rows)
}

func (db *DB) ListSections(ctx context.Context, lang string) ([]models.Section, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+sectionColumns+` FROM sections WHERE language = $1 ORDER BY id`, lang)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return collectSections(rows)
}

// ListPages returns one entry per URL, titled by its first section, in
// order of first appearance.
func (db *DB) ListPages(ctx context.Context) ([]models.Page, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT url, id, title, section_count FROM (
			SELECT DISTINCT ON (url) url, id, title, count(*) OVER (PARTITION BY url) AS section_count
			FROM sections
			ORDER BY url, id
		) pages
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		var p models.Page
		if err := rows.Scan(&p.URL, &p.FirstSectionID, &p.Title, &p.SectionCount); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// IterateSections streams every section in ID order.
func (db *DB) IterateSections(ctx context.Context, fn func(models.Section) error) error {
	rows, err := db.Pool.Query(ctx, `SELECT `+sectionColumns+` FROM sections ORDER BY id`)
	if err != nil {
		return fmt.Errorf("iterate sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (db *DB) GetTranslation(ctx context.Context, sectionID int64, lang string) (models.Translation, error) {
	var t models.Translation
	err := db.Pool.QueryRow(ctx, `
		SELECT id, section_id, language, translated_content, created_at, updated_at
		FROM translations WHERE section_id = $1 AND language = $2`, sectionID, lang).
		Scan(&t.ID, &t.SectionID, &t.Language, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Translation{}, ErrNotFound
	}
	if err != nil {
		return models.Translation{}, fmt.Errorf("get translation: %w", err)
	}
	return t, nil
}

// SaveTranslation inserts t. An existing (section, language) row is kept
// unless overwrite is set.
func (db *DB) SaveTranslation(ctx context.Context, t models.Translation, overwrite bool) error {
	conflict := `DO NOTHING`
	if overwrite {
		conflict = `DO UPDATE SET translated_content = EXCLUDED.translated_content, updated_at = now()`
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO translations (section_id, language, translated_content)
		VALUES ($1, $2, $3)
		ON CONFLICT (section_id, language) `+conflict, t.SectionID, t.Language, t.Content)
	if err != nil {
		return fmt.Errorf("save translation: %w", err)
	}
	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

func scanSection(row pgx.Row) (models.Section, error) {
	var s models.Section
	var level string
	err := row.Scan(&s.ID, &s.Title, &s.Content, &s.Language, &s.URL, &level, &s.CreatedAt, &s.UpdatedAt)
	s.Level = models.Level(level)
	return s, err
}

func collectSections(rows pgx.Rows) ([]models.Section, error) {
	defer rows.Close()
	var out []models.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// escapeLike makes substr match literally inside an ILIKE pattern.
func escapeLike(substr string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(substr)
}
