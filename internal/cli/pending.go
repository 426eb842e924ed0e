package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kagami-ai/kagami/internal/confirm"
)

func init() {
	rootCmd.AddCommand(pendingCmd)
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List capability confirmations",
	Long:  "Shows all confirmations in the store with their status, target, and timestamps.",
	RunE:  runPending,
}

func runPending(cmd *cobra.Command, args []string) error {
	store, err := confirm.NewStore(confirm.DefaultDir())
	if err != nil {
		return fmt.Errorf("failed to open confirmation store: %w", err)
	}

	list, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list confirmations: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No pending confirmations.")
		return nil
	}

	fmt.Printf("%-32s %-10s %-26s %-40s %s\n", "KEY", "STATUS", "CAPABILITY", "TARGET", "CREATED")
	for _, c := range list {
		fmt.Printf("%-32s %-10s %-26s %-40s %s\n",
			truncate(c.Key, 32),
			c.Status,
			c.Capability,
			truncate(c.Target, 40),
			c.CreatedAt.Format("15:04:05"),
		)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
