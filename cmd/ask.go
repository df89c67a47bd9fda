package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Run one completion and print the reply",
	Long: `Sends the prompt to the configured completion provider exactly as the
relay would and prints the reply. Failures print the fallback text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		r, err := buildRelay(cfg, stderrLogger(cfg))
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		fmt.Println(r.completion.Complete(context.Background(), prompt))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
