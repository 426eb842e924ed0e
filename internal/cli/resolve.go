package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kagami-ai/kagami/internal/intent"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>",
	Short: "Resolve raw user text to a capability call request",
	Long: "Runs semantic anchor routing and the rule cascade over the given text\n" +
		"and prints the resolution as JSON. L4 output means the utterance should\n" +
		"fall through to the conversational path.",
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	res := intent.NewResolver(nil).Resolve(text)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
