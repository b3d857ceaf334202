// Package app assembles the stores, translator, speech synthesizer and
// command processor from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"docvoice/internal/api"
	"docvoice/internal/config"
	"docvoice/internal/metrics"
	"docvoice/internal/normalize"
	"docvoice/internal/search"
	"docvoice/internal/storage"
	"docvoice/internal/translate"
	"docvoice/internal/tts"
	"docvoice/internal/voice"

	"github.com/prometheus/client_golang/prometheus"
)

// Store is implemented by storage.DB and storage.Memory.
type Store interface {
	api.Catalog
	translate.Store
	voice.DocumentStore
	storage.SectionSaver
}

type App struct {
	Store      Store
	Lookup     voice.DocumentStore
	Translator *translate.Service
	Speaker    *tts.Synthesizer
	Speech     *normalize.Normalizer
	Processor  *voice.Processor
	Docs       *api.DocsService
	Metrics    *metrics.Metrics

	closers []func()
}

// New connects to the configured backends. reg may be nil to skip metrics.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{}
	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	if err := a.openStore(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}

	table := normalize.DefaultTable
	if cfg.PronunciationFile != "" {
		t, err := normalize.LoadTable(cfg.PronunciationFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		table = t
	}
	a.Speech = normalize.New(table)

	provider := translate.NewChatProvider(translate.ProviderConfig{
		URL:     cfg.TranslatorURL,
		Model:   cfg.TranslatorModel,
		APIKey:  cfg.TranslatorAPIKey,
		Timeout: cfg.TranslatorTimeout,
	})
	a.Translator = translate.NewService(provider, a.Store,
		translate.WithLogger(logger.With(slog.String("component", "translate"))),
		translate.WithRecorder(a.Metrics),
	)

	speaker, err := tts.NewSynthesizer(tts.Config{
		MediaRoot: cfg.MediaRoot,
		MediaURL:  cfg.MediaURL,
		Endpoint:  cfg.TTSURL,
		Timeout:   cfg.TTSTimeout,
	}, tts.WithLogger(logger.With(slog.String("component", "tts"))), tts.WithRecorder(a.Metrics))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Speaker = speaker

	a.Processor = voice.NewProcessor(a.Lookup, a.Translator, a.Speaker,
		voice.WithLogger(logger.With(slog.String("component", "voice"))),
		voice.WithNormalizer(a.Speech),
		voice.WithObserver(a.Metrics),
	)
	a.Docs = &api.DocsService{
		Catalog:    a.Store,
		Lookup:     a.Lookup,
		Translator: a.Translator,
		Speaker:    a.Speaker,
		Speech:     a.Speech,
		Logger:     logger,
	}
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.DocStore == config.StoreMemory {
		mem := storage.NewMemory()
		if cfg.SeedFile != "" {
			pages, err := storage.ReadSeed(cfg.SeedFile)
			if err != nil {
				return err
			}
			n, err := storage.Seed(ctx, mem, pages)
			if err != nil {
				return err
			}
			logger.Info("seeded in-memory store", slog.Int("sections", n))
		}
		a.Store, a.Lookup = mem, mem
		return nil
	}

	db, err := storage.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, db.Close)
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	a.Store, a.Lookup = db, db

	if cfg.DocStore == config.StoreElasticsearch {
		es, err := search.NewClient(cfg.ElasticsearchURL, cfg.ElasticsearchIndex)
		if err != nil {
			return fmt.Errorf("elasticsearch could not connect: %w", err)
		}
		if err := es.InitIndex(ctx); err != nil {
			return fmt.Errorf("init index: %w", err)
		}
		a.Lookup = es
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
