package audit

// Entry is one line in the hash-chained JSONL audit log. All fields are
// structs and scalars (no map[string]any) to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp  string `json:"ts"`
	SessionID  string `json:"session_id,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	Kind       string `json:"kind"` // capability | consistency | resolution
	Capability string `json:"capability,omitempty"`
	Target     string `json:"target,omitempty"`
	Decision   string `json:"decision"`
	Reason     string `json:"reason,omitempty"`
	RuleIDs    string `json:"rule_ids,omitempty"` // comma-joined for determinism
	ConfigHash string `json:"config_hash,omitempty"`
	PrevHash   string `json:"prev_hash"`
}
