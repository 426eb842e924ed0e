package model

// Verdict is the consistency kernel's decision for a candidate reply.
type Verdict string

const (
	VerdictAllow   Verdict = "allow"
	VerdictRewrite Verdict = "rewrite"
	VerdictReject  Verdict = "reject"
)

// Severity classifies a rule hit. Hard hits are policy-significant and
// can force rejection; soft hits are cosmetic corrections.
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// PolicyMode controls how hard hits translate into verdicts.
// Under "hard" policy any hard hit rejects; under "soft" only a
// constitution boundary hit does.
type PolicyMode string

const (
	PolicySoft PolicyMode = "soft"
	PolicyHard PolicyMode = "hard"
)

// CheckStage marks where in the turn the kernel runs. A hard violation
// found pre-reply recommends degrading to a safer path; one found after
// an action already executed is only reported.
type CheckStage string

const (
	StagePreReply   CheckStage = "pre_reply"
	StagePostAction CheckStage = "post_action"
)

// ReplyMode selects which canned fallback the factual guard substitutes
// when it discards a fabricated reply.
type ReplyMode string

const (
	ModeGreeting  ReplyMode = "greeting"
	ModeProactive ReplyMode = "proactive"
	ModeGeneral   ReplyMode = "general"
)

// RuleHit records one guard correction or violation.
type RuleHit struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Reason   string   `json:"reason,omitempty"`
}

// MemoryBlock is an evidence block handed over by the recall engine.
type MemoryBlock struct {
	ID      string `json:"id"`
	Source  string `json:"source"` // user | assistant | system
	Content string `json:"content"`
}

// LifeEvent is one entry of the session's event history.
type LifeEvent struct {
	Type    string `json:"type"` // user_message | assistant_message | ...
	TS      int64  `json:"ts"`   // unix milliseconds
	Payload string `json:"payload"`
}

// Constitution is the persona's configured charter.
type Constitution struct {
	Mission    string   `json:"mission" yaml:"mission"`
	Values     []string `json:"values" yaml:"values"`
	Boundaries []string `json:"boundaries" yaml:"boundaries"`
}

// CheckInput carries everything the consistency kernel needs for one
// candidate reply. All fields are read-only to the kernel.
type CheckInput struct {
	CandidateText          string       `json:"candidate_text"`
	PersonaName            string       `json:"persona_name"`
	UserInput              string       `json:"user_input"`
	SelectedMemories       []string     `json:"selected_memories,omitempty"`
	SelectedMemoryBlocks   []MemoryBlock `json:"selected_memory_blocks,omitempty"`
	LifeEvents             []LifeEvent  `json:"life_events,omitempty"`
	Constitution           Constitution `json:"constitution"`
	StrictMemoryGrounding  bool         `json:"strict_memory_grounding"`
	IsAdultContext         bool         `json:"is_adult_context"`
	FictionalRoleplay      bool         `json:"fictional_roleplay_enabled"`
	Policy                 PolicyMode   `json:"policy"`
	Stage                  CheckStage   `json:"stage"`
	Mode                   ReplyMode    `json:"mode,omitempty"`
	ThirdPartyCandidates   []string     `json:"third_party_candidates,omitempty"`
}

// CheckResult is the kernel's final answer for one candidate reply.
// Transient, single-use; the caller decides what to persist.
type CheckResult struct {
	Verdict            Verdict   `json:"verdict"`
	Text               string    `json:"text"`
	RuleHits           []RuleHit `json:"rule_hits,omitempty"`
	DegradeRecommended bool      `json:"degrade_recommended"`
	DegradeReasons     []string  `json:"degrade_reasons,omitempty"`
	Explanations       []string  `json:"explanations,omitempty"`
	TraceID            string    `json:"trace_id"`
}
