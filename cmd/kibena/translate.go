package main

import (
	"fmt"
	"time"

	"docvoice/internal/translate"

	"github.com/spf13/cobra"
)

var (
	translateLangs []string
	translateForce bool
	translatePause time.Duration
)

var translateCmd = &cobra.Command{
	Use:   "translate-docs",
	Short: "Translate stored sections",
	Long:  `Translate every English section into the given languages, or all supported languages when none are given. Existing translations are kept unless --force is set.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, logger, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		translate.WithPause(translatePause)(a.Translator)
		sum, err := a.Translator.TranslateAll(cmd.Context(), translateLangs, translateForce)
		if err != nil {
			return err
		}
		logger.Info("translation finished")
		fmt.Printf("translated %d, skipped %d, failed %d\n", sum.Translated, sum.Skipped, sum.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringSliceVarP(&translateLangs, "language", "l", nil, "Language code to translate into (repeatable)")
	translateCmd.Flags().BoolVar(&translateForce, "force", false, "Replace existing translations")
	translateCmd.Flags().DurationVar(&translatePause, "pause", time.Second, "Pause between provider calls")
}
