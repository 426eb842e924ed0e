package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kagami-ai/kagami/internal/confirm"
)

func init() {
	rootCmd.AddCommand(denyCmd)
}

var denyCmd = &cobra.Command{
	Use:   "deny <key>",
	Short: "Deny a pending capability confirmation",
	Long:  "Denies a pending confirmation. The capability stays blocked for this key.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeny,
}

func runDeny(cmd *cobra.Command, args []string) error {
	key := args[0]

	store, err := confirm.NewStore(confirm.DefaultDir())
	if err != nil {
		return fmt.Errorf("failed to open confirmation store: %w", err)
	}

	if err := store.Deny(key); err != nil {
		return err
	}

	fmt.Printf("Denied %q\n", key)
	return nil
}
