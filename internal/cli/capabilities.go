package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kagami-ai/kagami/internal/capability"
)

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "List registered capabilities",
	Long:  "Shows every registered capability with its risk tier, owner-only flag, and whether first use requires confirmation.",
	RunE:  runCapabilities,
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	fmt.Printf("%-28s %-8s %-6s %-8s %s\n", "NAME", "RISK", "OWNER", "CONFIRM", "DESCRIPTION")
	for _, def := range capability.List() {
		fmt.Printf("%-28s %-8s %-6v %-8v %s\n",
			def.Name,
			def.Risk,
			def.OwnerOnly,
			def.RequiresConfirmation,
			def.Description,
		)
	}
	return nil
}
