package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/genie-relay/internal/config"
)

var sendTo string

var sendCmd = &cobra.Command{
	Use:   "send --to <id> <text>",
	Short: "Send one message through the messaging API",
	Long:  `Dispatches a single text message to a recipient and prints the platform's delivery response.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Messaging.AccessToken == "" || cfg.Messaging.PhoneNumberID == "" {
			return fmt.Errorf("%s and %s must be set", config.EnvAccessToken, config.EnvPhoneNumberID)
		}

		r, err := buildRelay(cfg, stderrLogger(cfg))
		if err != nil {
			return err
		}

		delivery, sendErr := r.dispatcher.Send(context.Background(), sendTo, strings.Join(args, " "))
		if delivery != nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.Encode(delivery)
		}
		return sendErr
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient phone number")
	sendCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(sendCmd)
}
