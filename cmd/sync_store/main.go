package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"docvoice/internal/config"
	"docvoice/internal/models"
	"docvoice/internal/search"
	"docvoice/internal/storage"

	"github.com/elastic/go-elasticsearch/v8/esutil"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	// allow option to reset index (--reset)
	resetIndex := flag.Bool("reset", false, "Delete and recreate elasticsearch index")
	workers := flag.Int("workers", 4, "Bulk indexer workers")
	flag.Parse()

	logger := cfg.NewLogger()
	ctx := context.Background()
	logger.Info("connecting to services")

	db, err := storage.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db error", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	es, err := search.NewClient(cfg.ElasticsearchURL, cfg.ElasticsearchIndex)
	if err != nil {
		logger.Error("es error", slog.Any("error", err))
		os.Exit(1)
	}

	if *resetIndex {
		logger.Info("recreating index", slog.String("index", es.Index()))
		err = es.ResetIndex(ctx)
	} else {
		err = es.InitIndex(ctx)
	}
	if err != nil {
		logger.Error("index setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	bi, err := es.NewBulkIndexer(*workers)
	if err != nil {
		logger.Error("error creating bulk indexer", slog.Any("error", err))
		os.Exit(1)
	}

	var count uint64
	start := time.Now()
	logger.Info("syncing db with es")

	err = db.IterateSections(ctx, func(s models.Section) error {
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}

		return bi.Add(
			ctx,
			esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: strconv.FormatInt(s.ID, 10),
				Body:       bytes.NewReader(data),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						logger.Error("index failed", slog.String("id", item.DocumentID), slog.Any("error", err))
					} else {
						logger.Error("index failed", slog.String("id", item.DocumentID),
							slog.String("type", res.Error.Type), slog.String("reason", res.Error.Reason))
					}
				},
				OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
					atomic.AddUint64(&count, 1)
				},
			},
		)
	})
	if err != nil {
		logger.Error("iteration failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := bi.Close(ctx); err != nil {
		logger.Error("unexpected error closing bulk indexer", slog.Any("error", err))
		os.Exit(1)
	}

	stats := bi.Stats()
	elapsed := time.Since(start)
	rate := float64(count) / elapsed.Seconds()

	logger.Info("sync complete",
		slog.Uint64("indexed", count),
		slog.Duration("time", elapsed),
		slog.String("rate", strconv.FormatFloat(rate, 'f', 0, 64)+" docs/sec"),
		slog.Uint64("errors", stats.NumFailed),
	)
}
