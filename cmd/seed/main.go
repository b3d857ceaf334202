package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"docvoice/internal/config"
	"docvoice/internal/models"
	"docvoice/internal/search"
	"docvoice/internal/storage"
)

// DualSaver writes sections to Postgres and mirrors them into the search
// index. Index failures are logged, not returned.
type DualSaver struct {
	PG     *storage.DB
	ES     *search.Client
	Logger *slog.Logger
}

func (ds *DualSaver) SaveSections(ctx context.Context, url string, sections []models.Section) ([]models.Section, error) {
	saved, err := ds.PG.SaveSections(ctx, url, sections)
	if err != nil {
		return nil, err
	}
	if ds.ES == nil {
		return saved, nil
	}
	for _, s := range saved {
		if err := ds.ES.IndexSection(ctx, s); err != nil {
			ds.Logger.Warn("failed to index section", slog.String("url", url), slog.Int64("id", s.ID), slog.Any("error", err))
		}
	}
	return saved, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	file := flag.String("file", cfg.SeedFile, "YAML file of pages and sections")
	noIndex := flag.Bool("no-index", false, "Only write to Postgres")
	flag.Parse()

	logger := cfg.NewLogger()
	ctx := context.Background()

	if *file == "" {
		logger.Error("no seed file given, use --file or SEED_FILE")
		os.Exit(2)
	}
	pages, err := storage.ReadSeed(*file)
	if err != nil {
		logger.Error("read seed", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("error connecting to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		logger.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}

	saver := &DualSaver{PG: db, Logger: logger}
	if !*noIndex {
		es, err := search.NewClient(cfg.ElasticsearchURL, cfg.ElasticsearchIndex)
		if err == nil {
			err = es.InitIndex(ctx)
		}
		if err != nil {
			logger.Warn("elasticsearch unavailable, seeding Postgres only", slog.Any("error", err))
		} else {
			saver.ES = es
		}
	}

	n, err := storage.Seed(ctx, saver, pages)
	if err != nil {
		logger.Error("seed failed", slog.Int("saved", n), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seed complete", slog.Int("pages", len(pages)), slog.Int("sections", n))
}
