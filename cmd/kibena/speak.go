package main

import (
	"fmt"
	"strings"

	"docvoice/internal/models"

	"github.com/spf13/cobra"
)

var (
	speakLang string
	speakRaw  bool
)

var speakCmd = &cobra.Command{
	Use:   "speak [text...]",
	Short: "Synthesize text to an MP3",
	Long:  `Render text for speech and write it to the audio cache. Prints the file path. Use --raw to skip the pronunciation rewrite.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !models.IsSupported(speakLang) {
			return fmt.Errorf("unsupported language: %s", speakLang)
		}
		a, _, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		text := strings.Join(args, " ")
		if !speakRaw {
			text = a.Speech.ForSpeech(text)
		}
		path, err := a.Speaker.Synthesize(cmd.Context(), text, speakLang)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speakCmd)
	speakCmd.Flags().StringVarP(&speakLang, "language", "l", models.BaseLanguage, "Language code")
	speakCmd.Flags().BoolVar(&speakRaw, "raw", false, "Speak the text as given")
}
