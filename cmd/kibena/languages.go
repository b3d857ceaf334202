package main

import (
	"fmt"

	"docvoice/internal/models"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, l := range models.SupportedLanguages {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", l.Tag, l.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
