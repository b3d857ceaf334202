package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"docvoice/internal/api"
	"docvoice/internal/app"
	"docvoice/internal/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, logger, reg)
	cancel()
	if err != nil {
		logger.Error("startup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer a.Close()

	handler := &api.Handler{Service: a.Docs, Dispatcher: a.Processor, Logger: logger}
	r := api.NewRouter(handler, api.RouterConfig{
		MediaRoot: cfg.MediaRoot,
		MediaURL:  cfg.MediaURL,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:    logger,
	})

	logger.Info("server running", slog.String("port", cfg.Port), slog.String("doc_store", cfg.DocStore))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
