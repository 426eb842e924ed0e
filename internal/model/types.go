package model

// Risk classifies how dangerous a capability is when misused.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// RiskRank maps risk to a comparable integer.
var RiskRank = map[Risk]int{
	RiskLow:    0,
	RiskMedium: 1,
	RiskHigh:   2,
}

// CallSource identifies where a capability call request originated.
type CallSource string

const (
	SourceDialogue CallSource = "dialogue"
	SourceMCP      CallSource = "mcp"
)

// GuardStatus is the capability policy outcome. Every request maps to
// exactly one of these three; the guard never throws.
type GuardStatus string

const (
	StatusAllow           GuardStatus = "allow"
	StatusConfirmRequired GuardStatus = "confirm_required"
	StatusRejected        GuardStatus = "rejected"
)

// CallRequest is a structured capability invocation, produced by the
// intent resolver or directly by a protocol caller. Input may be
// normalized (path resolution, URL cleanup) by the policy guard.
type CallRequest struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Source CallSource     `json:"source"`
}

// StringInput returns a string field from the request input, or "".
func (r *CallRequest) StringInput(key string) string {
	if r.Input == nil {
		return ""
	}
	s, _ := r.Input[key].(string)
	return s
}

// BoolInput returns a bool field from the request input.
// Only a literal true counts; absent or mistyped values are false.
func (r *CallRequest) BoolInput(key string) bool {
	if r.Input == nil {
		return false
	}
	b, _ := r.Input[key].(bool)
	return b
}

// GuardResult is the policy guard's verdict for one capability request.
type GuardResult struct {
	Status            GuardStatus    `json:"status"`
	Reason            string         `json:"reason,omitempty"`
	Capability        string         `json:"capability"`
	NormalizedInput   map[string]any `json:"normalized_input,omitempty"`
	RequiresOwnerAuth bool           `json:"requires_owner_auth,omitempty"`
}

// RoutingTier classifies how an utterance was resolved.
// L1 means a rule or semantic anchor matched with high confidence and the
// caller may act without further LLM involvement. L4 means no match; the
// turn falls through to a routing path outside this layer.
type RoutingTier string

const (
	TierL1 RoutingTier = "L1"
	TierL4 RoutingTier = "L4"
)

// Resolution is the outcome of intent resolution over raw user text.
type Resolution struct {
	Matched        bool         `json:"matched"`
	Request        *CallRequest `json:"request,omitempty"`
	Confidence     float64      `json:"confidence"`
	Reason         string       `json:"reason,omitempty"`
	RoutingTier    RoutingTier  `json:"routing_tier,omitempty"`
	FallbackReason string       `json:"fallback_reason,omitempty"`
}
