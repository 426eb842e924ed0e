package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kagami",
	Short: "Trust and consistency layer for a conversational persona runtime",
	Long: "Decides whether a requested action is permitted and whether generated\n" +
		"reply text is safe to show as-is, must be rewritten, or must be rejected.\n" +
		"Deterministic guards only; no text generation, no memory retrieval.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.kagami/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
