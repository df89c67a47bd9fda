package cmd

import "github.com/spf13/cobra"

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "genie-relay",
	Short: "WhatsApp to LLM command relay",
	Long: `genie-relay receives WhatsApp messages from the BestCRM webhook, answers
the ones that start with the trigger phrase using an LLM completion, and
sends the reply back to the sender.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "genie-relay.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
