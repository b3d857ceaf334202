package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"docvoice/internal/app"
	"docvoice/internal/config"

	"github.com/spf13/cobra"
)

var (
	verbose  bool
	docStore string
)

var rootCmd = &cobra.Command{
	Use:   "kibena",
	Short: "Voice assistant for framework documentation",
	Long: `Kibena answers "kibena read|search|translate to|help" commands against a
documentation store, translates sections and speaks them as MP3.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&docStore, "store", "", "Override DOC_STORE (postgres, elasticsearch, memory)")
}

// loadApp reads the environment, applies global flags and wires the services.
func loadApp(ctx context.Context) (*app.App, *slog.Logger, error) {
	if docStore != "" {
		os.Setenv("DOC_STORE", docStore)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
