package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kagami-ai/kagami/internal/config"
	"github.com/kagami-ai/kagami/internal/consistency"
	"github.com/kagami-ai/kagami/internal/model"
)

var (
	reviewText      string
	reviewUserInput string
	reviewStage     string
	reviewMode      string
	reviewEvidence  string
)

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().StringVar(&reviewText, "text", "", "Candidate reply text ('-' reads stdin)")
	reviewCmd.Flags().StringVar(&reviewUserInput, "user-input", "", "The user utterance this turn")
	reviewCmd.Flags().StringVar(&reviewStage, "stage", "pre_reply", "Check stage (pre_reply|post_action)")
	reviewCmd.Flags().StringVar(&reviewMode, "mode", "general", "Reply mode (greeting|proactive|general)")
	reviewCmd.Flags().StringVar(&reviewEvidence, "evidence", "", "Path to a JSON file with memories, memory blocks, and life events")
	reviewCmd.MarkFlagRequired("text")
}

// evidenceFile is the optional JSON sidecar for review input.
type evidenceFile struct {
	SelectedMemories     []string            `json:"selected_memories"`
	SelectedMemoryBlocks []model.MemoryBlock `json:"selected_memory_blocks"`
	LifeEvents           []model.LifeEvent   `json:"life_events"`
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run the consistency guard chain over candidate reply text",
	Long: "Grounds, de-contaminates, and re-attributes a candidate reply, then\n" +
		"prints the final text and verdict as JSON.\n\n" +
		"Exit code 0 for allow, 2 for rewrite, 1 for reject.",
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	text := reviewText
	if text == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	var ev evidenceFile
	if reviewEvidence != "" {
		data, err := os.ReadFile(reviewEvidence)
		if err != nil {
			return fmt.Errorf("read evidence file: %w", err)
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("parse evidence file: %w", err)
		}
	}

	kernel := consistency.New(nil)
	result := kernel.Check(model.CheckInput{
		CandidateText:         text,
		PersonaName:           cfg.PersonaName,
		UserInput:             reviewUserInput,
		SelectedMemories:      ev.SelectedMemories,
		SelectedMemoryBlocks:  ev.SelectedMemoryBlocks,
		LifeEvents:            ev.LifeEvents,
		Constitution:          cfg.Constitution,
		StrictMemoryGrounding: cfg.StrictMemoryGrounding,
		IsAdultContext:        cfg.AdultContext,
		FictionalRoleplay:     cfg.FictionalRoleplay,
		Policy:                cfg.Policy,
		Stage:                 model.CheckStage(reviewStage),
		Mode:                  model.ReplyMode(reviewMode),
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	switch result.Verdict {
	case model.VerdictRewrite:
		os.Exit(2)
	case model.VerdictReject:
		os.Exit(1)
	}
	return nil
}
