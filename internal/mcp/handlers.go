package mcp

import (
	"context"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kagami-ai/kagami/internal/capability"
	"github.com/kagami-ai/kagami/internal/confirm"
	"github.com/kagami-ai/kagami/internal/guard"
	"github.com/kagami-ai/kagami/internal/model"
)

// --- Input/Output types ---

// ResolveInput defines parameters for the kagami_resolve tool.
type ResolveInput struct {
	Text string `json:"text" jsonschema:"raw user utterance"`
}

// ResolveOutput mirrors the resolver result.
type ResolveOutput struct {
	Matched        bool           `json:"matched"`
	Capability     string         `json:"capability,omitempty"`
	Input          map[string]any `json:"input,omitempty"`
	Confidence     float64        `json:"confidence"`
	Reason         string         `json:"reason,omitempty"`
	RoutingTier    string         `json:"routing_tier,omitempty"`
	FallbackReason string         `json:"fallback_reason,omitempty"`
}

// EvaluateInput defines parameters for the kagami_evaluate tool.
type EvaluateInput struct {
	Name  string         `json:"name" jsonschema:"capability name"`
	Input map[string]any `json:"input,omitempty" jsonschema:"capability input payload"`
}

// EvaluateOutput contains the guard verdict.
type EvaluateOutput struct {
	Status            string         `json:"status"`
	Reason            string         `json:"reason,omitempty"`
	Capability        string         `json:"capability"`
	NormalizedInput   map[string]any `json:"normalized_input,omitempty"`
	RequiresOwnerAuth bool           `json:"requires_owner_auth,omitempty"`
	ConfirmationKey   string         `json:"confirmation_key,omitempty"`
}

// ReviewInput defines parameters for the kagami_review tool.
type ReviewInput struct {
	CandidateText        string              `json:"candidate_text" jsonschema:"LLM-generated reply to review"`
	UserInput            string              `json:"user_input,omitempty" jsonschema:"the user utterance this turn"`
	SelectedMemories     []string            `json:"selected_memories,omitempty"`
	SelectedMemoryBlocks []model.MemoryBlock `json:"selected_memory_blocks,omitempty"`
	LifeEvents           []model.LifeEvent   `json:"life_events,omitempty"`
	Stage                string              `json:"stage,omitempty" jsonschema:"pre_reply or post_action"`
	Mode                 string              `json:"mode,omitempty" jsonschema:"greeting, proactive, or general"`
}

// ReviewOutput contains the consistency verdict and final text.
type ReviewOutput struct {
	Verdict            string          `json:"verdict"`
	Text               string          `json:"text"`
	RuleHits           []model.RuleHit `json:"rule_hits,omitempty"`
	DegradeRecommended bool            `json:"degrade_recommended"`
	DegradeReasons     []string        `json:"degrade_reasons,omitempty"`
	Explanations       []string        `json:"explanations,omitempty"`
	TraceID            string          `json:"trace_id"`
}

// CapabilitiesInput is empty; no parameters needed.
type CapabilitiesInput struct{}

// CapabilitiesOutput lists the static registry.
type CapabilitiesOutput struct {
	Capabilities []capability.Definition `json:"capabilities"`
}

// ApproveInput defines parameters for the kagami_approve tool.
type ApproveInput struct {
	Key      string `json:"key" jsonschema:"confirmation key from a confirm_required evaluation"`
	Duration string `json:"duration,omitempty" jsonschema:"approval duration (e.g. 5m), omit for one-time approval"`
}

// ApproveOutput confirms the approval.
type ApproveOutput struct {
	Key      string `json:"key"`
	Status   string `json:"status"`
	Duration string `json:"duration,omitempty"`
}

// PendingInput is empty; no parameters needed.
type PendingInput struct{}

// PendingOutput lists all pending confirmations.
type PendingOutput struct {
	Confirmations []PendingItem `json:"confirmations"`
}

// PendingItem describes a single confirmation request.
type PendingItem struct {
	Key        string `json:"key"`
	Status     string `json:"status"`
	Capability string `json:"capability"`
	Target     string `json:"target,omitempty"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// --- Handlers ---

func (s *Server) handleResolve(ctx context.Context, req *mcpsdk.CallToolRequest, input ResolveInput) (*mcpsdk.CallToolResult, ResolveOutput, error) {
	res := s.resolver.Resolve(input.Text)

	out := ResolveOutput{
		Matched:        res.Matched,
		Confidence:     res.Confidence,
		Reason:         res.Reason,
		RoutingTier:    string(res.RoutingTier),
		FallbackReason: res.FallbackReason,
	}
	if res.Request != nil {
		out.Capability = res.Request.Name
		out.Input = res.Request.Input
	}

	decision := "no_match"
	if res.Matched {
		decision = "matched"
	}
	s.recordAudit("resolution", out.Capability, "", decision, res.Reason, "", "")
	return nil, out, nil
}

func (s *Server) handleEvaluate(ctx context.Context, req *mcpsdk.CallToolRequest, input EvaluateInput) (*mcpsdk.CallToolResult, EvaluateOutput, error) {
	call := &model.CallRequest{Name: input.Name, Input: input.Input, Source: model.SourceMCP}
	if call.Input == nil {
		call.Input = map[string]any{}
	}

	s.session.Mu.Lock()
	result := s.evaluateWithConfirmations(call)
	s.session.Mu.Unlock()

	out := EvaluateOutput{
		Status:            string(result.Status),
		Reason:            result.Reason,
		Capability:        result.Capability,
		NormalizedInput:   result.NormalizedInput,
		RequiresOwnerAuth: result.RequiresOwnerAuth,
	}
	target := confirmationTarget(result)
	if result.Status == model.StatusConfirmRequired {
		key := confirm.Key(result.Capability, target)
		s.confirms.Request(key, result.Capability, target, result.Reason)
		out.ConfirmationKey = key
	}

	s.recordAudit("capability", result.Capability, target, string(result.Status), result.Reason, "", "")

	if result.Status == model.StatusRejected {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

// evaluateWithConfirmations runs the guard, resolving confirm_required
// through the confirmation store: an approved key is consumed and the
// request re-evaluated as confirmed. Must be called with the session
// mutex held.
func (s *Server) evaluateWithConfirmations(call *model.CallRequest) model.GuardResult {
	result := guard.Evaluate(call, s.session)
	if result.Status != model.StatusConfirmRequired {
		s.applySideEffects(call, result)
		return result
	}

	key := confirm.Key(result.Capability, confirmationTarget(result))
	status, err := s.confirms.Check(key)
	if err != nil || status != confirm.StatusApproved {
		return result
	}
	s.confirms.Consume(key)

	call.Input["confirmed"] = true
	confirmed := guard.Evaluate(call, s.session)
	s.applySideEffects(call, confirmed)
	return confirmed
}

// applySideEffects performs the caller-side context mutations after an
// allow: first-use approvals become permanent for the session, owner
// auth opens its window, set_mode flips the flag.
func (s *Server) applySideEffects(call *model.CallRequest, result model.GuardResult) {
	if result.Status != model.StatusAllow {
		return
	}
	switch result.Capability {
	case "session.read_file":
		if p, _ := result.NormalizedInput["path"].(string); p != "" {
			s.session.ApprovedReadPaths[p] = true
		}
	case "session.fetch_url":
		if o, _ := result.NormalizedInput["origin"].(string); o != "" {
			s.session.ApprovedFetchOrigins[o] = true
		}
	case "session.owner_auth":
		s.session.AuthorizeOwner(time.Now())
	case "session.set_mode":
		key, _ := result.NormalizedInput["modeKey"].(string)
		val, _ := result.NormalizedInput["modeValue"].(bool)
		if key != "" {
			s.session.Modes[key] = val
		}
	case "session.shared_space_setup":
		if p, _ := result.NormalizedInput["path"].(string); p != "" {
			s.session.SharedSpacePath = p
		}
	}
}

func confirmationTarget(result model.GuardResult) string {
	if result.NormalizedInput == nil {
		return ""
	}
	if o, _ := result.NormalizedInput["origin"].(string); o != "" {
		return o
	}
	if p, _ := result.NormalizedInput["path"].(string); p != "" {
		return p
	}
	if n, _ := result.NormalizedInput["name"].(string); n != "" {
		return n
	}
	return ""
}

func (s *Server) handleReview(ctx context.Context, req *mcpsdk.CallToolRequest, input ReviewInput) (*mcpsdk.CallToolResult, ReviewOutput, error) {
	stage := model.CheckStage(input.Stage)
	if stage == "" {
		stage = model.StagePreReply
	}

	s.session.Mu.Lock()
	adult := s.session.Modes["adult_mode"]
	fiction := s.session.Modes["fiction_mode"]
	strict := s.session.Modes["strict_grounding"]
	cfg := s.cfg
	s.session.Mu.Unlock()

	result := s.kernel.Check(model.CheckInput{
		CandidateText:         input.CandidateText,
		PersonaName:           cfg.PersonaName,
		UserInput:             input.UserInput,
		SelectedMemories:      input.SelectedMemories,
		SelectedMemoryBlocks:  input.SelectedMemoryBlocks,
		LifeEvents:            input.LifeEvents,
		Constitution:          cfg.Constitution,
		StrictMemoryGrounding: strict,
		IsAdultContext:        adult,
		FictionalRoleplay:     fiction,
		Policy:                cfg.Policy,
		Stage:                 stage,
		Mode:                  model.ReplyMode(input.Mode),
	})

	ruleIDs := ""
	for i, h := range result.RuleHits {
		if i > 0 {
			ruleIDs += ","
		}
		ruleIDs += h.RuleID
	}
	s.recordAudit("consistency", "", "", string(result.Verdict), "", ruleIDs, result.TraceID)

	out := ReviewOutput{
		Verdict:            string(result.Verdict),
		Text:               result.Text,
		RuleHits:           result.RuleHits,
		DegradeRecommended: result.DegradeRecommended,
		DegradeReasons:     result.DegradeReasons,
		Explanations:       result.Explanations,
		TraceID:            result.TraceID,
	}
	if result.Verdict == model.VerdictReject {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleCapabilities(ctx context.Context, req *mcpsdk.CallToolRequest, input CapabilitiesInput) (*mcpsdk.CallToolResult, CapabilitiesOutput, error) {
	return nil, CapabilitiesOutput{Capabilities: capability.List()}, nil
}

func (s *Server) handleApprove(ctx context.Context, req *mcpsdk.CallToolRequest, input ApproveInput) (*mcpsdk.CallToolResult, ApproveOutput, error) {
	var dur time.Duration
	if input.Duration != "" {
		parsed, err := time.ParseDuration(input.Duration)
		if err != nil {
			return &mcpsdk.CallToolResult{IsError: true}, ApproveOutput{}, err
		}
		dur = parsed
	}
	if err := s.confirms.Approve(input.Key, dur); err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, ApproveOutput{}, err
	}
	return nil, ApproveOutput{Key: input.Key, Status: string(confirm.StatusApproved), Duration: input.Duration}, nil
}

func (s *Server) handlePending(ctx context.Context, req *mcpsdk.CallToolRequest, input PendingInput) (*mcpsdk.CallToolResult, PendingOutput, error) {
	all, err := s.confirms.List()
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, PendingOutput{}, err
	}
	out := PendingOutput{}
	for _, c := range all {
		if c.Status != confirm.StatusPending {
			continue
		}
		out.Confirmations = append(out.Confirmations, PendingItem{
			Key:        c.Key,
			Status:     string(c.Status),
			Capability: c.Capability,
			Target:     c.Target,
			Reason:     c.Reason,
			CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		})
	}
	return nil, out, nil
}
