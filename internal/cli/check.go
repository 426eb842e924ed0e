package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kagami-ai/kagami/internal/config"
	"github.com/kagami-ai/kagami/internal/guard"
	"github.com/kagami-ai/kagami/internal/model"
)

var (
	checkName  string
	checkInput string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkName, "name", "", "Capability name (required)")
	checkCmd.Flags().StringVar(&checkInput, "input", "{}", "Capability input as JSON")
	checkCmd.MarkFlagRequired("name")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a capability request against policy (dry-run)",
	Long: "Builds a fresh session context from config and evaluates one\n" +
		"capability call. Prints the guard result as JSON.\n\n" +
		"Exit code 0 for allow, 2 for confirm_required, 1 for rejected.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(checkInput), &input); err != nil {
		return fmt.Errorf("invalid --input JSON: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	req := &model.CallRequest{Name: checkName, Input: input, Source: model.SourceMCP}
	result := guard.Evaluate(req, cfg.NewSessionContext(cwd))

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	switch result.Status {
	case model.StatusConfirmRequired:
		os.Exit(2)
	case model.StatusRejected:
		os.Exit(1)
	}
	return nil
}
