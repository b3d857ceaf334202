package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [utterance...]",
	Short: "Run a voice command",
	Long:  `Run a command such as "kibena read models" and print the answer. The whole utterance, wake word included, is taken from the arguments.`,
	Example: `  kibena ask kibena search querysets
  kibena ask --json "kibena translate to french views"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.Processor.Dispatch(cmd.Context(), strings.Join(args, " "))

		if askJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(res)
		}

		fmt.Println(res.Message)
		switch r := res.Response.(type) {
		case string:
			fmt.Println(r)
		case nil:
		default:
			data, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		}
		if res.AudioURL != "" {
			fmt.Println("audio:", res.AudioURL)
		}
		if !res.Success {
			a.Close()
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Output the result envelope as JSON")
}
