// Package intent turns raw user text into structured capability call
// requests. Resolution order is load-bearing: semantic anchor routing
// first, then a fixed-priority rule cascade, then L4 fallthrough.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kagami-ai/kagami/internal/model"
	"github.com/kagami-ai/kagami/internal/similarity"
)

// Resolver maps utterances to capability call requests.
type Resolver struct {
	scorer similarity.Scorer
}

// NewResolver creates a resolver. A nil scorer falls back to the
// deterministic lexical scorer.
func NewResolver(scorer similarity.Scorer) *Resolver {
	if scorer == nil {
		scorer = similarity.NewLexical()
	}
	return &Resolver{scorer: scorer}
}

// Resolve maps trimmed raw text to a capability request. First match
// wins; the cascade order must not be changed (delete before read,
// semantic routing before rule fallback).
func (r *Resolver) Resolve(text string) model.Resolution {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Resolution{Matched: false, Reason: model.ReasonEmptyInput}
	}

	if res, ok := r.resolveByAnchor(text); ok {
		return res
	}

	for _, rule := range cascade {
		if res, ok := rule(text); ok {
			return res
		}
	}

	return model.Resolution{
		Matched:        false,
		RoutingTier:    model.TierL4,
		Reason:         model.ReasonNoRuleMatch,
		FallbackReason: "capability_regex_no_match",
	}
}

// resolveByAnchor routes via semantic anchor phrases. Capabilities that
// carry an argument re-extract it from the original text; extraction
// failure discards the anchor match entirely.
func (r *Resolver) resolveByAnchor(text string) (model.Resolution, bool) {
	scores := r.scorer.ScoreTopics(text, anchorPhrases())
	if len(scores) == 0 || scores[0].Score < anchorThreshold {
		return model.Resolution{}, false
	}

	cap := anchorCapability(scores[0].Topic)
	input := map[string]any{}
	switch cap {
	case "persona.connect":
		name := extractConnectTarget(text)
		if name == "" {
			return model.Resolution{}, false
		}
		input["name"] = name
	case "persona.create":
		name := extractCreateName(text)
		if name == "" {
			return model.Resolution{}, false
		}
		input["name"] = name
	case "":
		return model.Resolution{}, false
	}

	conf := scores[0].Score
	if conf > 0.98 {
		conf = 0.98
	}
	return matched(cap, input, conf, "semantic_anchor"), true
}

func matched(name string, input map[string]any, confidence float64, reason string) model.Resolution {
	if input == nil {
		input = map[string]any{}
	}
	return model.Resolution{
		Matched:     true,
		Request:     &model.CallRequest{Name: name, Input: input, Source: model.SourceDialogue},
		Confidence:  confidence,
		Reason:      reason,
		RoutingTier: model.TierL1,
	}
}

// cascadeRule inspects text and either claims it or passes.
type cascadeRule func(text string) (model.Resolution, bool)

var (
	discoveryRe   = regexp.MustCompile(`(?i)what (?:all )?can you do|你能做什么|你会做?什么|你都能干什么|你有(?:什么|哪些)能力`)
	showModesRe   = regexp.MustCompile(`(?i)^/modes$|show (?:current )?modes|当前(?:有哪些)?模式|显示模式|模式开关`)
	proStatusRe   = regexp.MustCompile(`(?i)proactive status|主动(?:消息|问候)(?:的)?(?:状态|开着吗|是开的吗)`)
	proTuneRe     = regexp.MustCompile(`^/proactive\s+(on|off)(?:\s+(\d+))?$`)
	farewellRe    = regexp.MustCompile(`(?i)^(?:goodbye|bye\s?bye|see you|good ?night)[\s!.！。~]*$|^(?:拜拜|再见|晚安|下次(?:再)?聊)[\s!！。~]*$`)
	exitRe        = regexp.MustCompile(`(?i)^/(?:exit|quit)$|^(?:exit|quit)$|^退出$`)
	listPersonaRe = regexp.MustCompile(`(?i)^/personas$|list (?:all )?personas|列出(?:所有)?人格|有哪些人格`)

	connectSlashRe = regexp.MustCompile(`^/connect\s+(\S+)`)
	connectZhRe    = regexp.MustCompile(`切换到\s*([^\s，。！？]+)`)
	connectEnRe    = regexp.MustCompile(`(?i)switch to\s+(\S+)`)
	createSlashRe  = regexp.MustCompile(`^/new\s+(\S+)`)
	createZhRe     = regexp.MustCompile(`创建(?:人格|角色)\s*([^\s，。！？]+)`)
	createEnRe     = regexp.MustCompile(`(?i)create (?:a )?(?:new )?persona(?: named)?\s+(\S+)`)

	ownerModeRe  = regexp.MustCompile(`^owner\s+(\S+)\s+(\w+)\s+(on|off)$`)
	ownerAuthRe  = regexp.MustCompile(`^owner\s+(\S+)$`)
	modeUpdateRe = regexp.MustCompile(`(?i)^(?:/mode|mode|set_mode)\s+(\w+)\s+(on|off)(?:\s+confirmed=(true|false))?$`)

	spaceSetupRe  = regexp.MustCompile(`^/space\s+setup\s+(\S+)$|(?:设置|配置)共享(?:空间|文件夹)\s*(\S*)`)
	spaceDeleteRe = regexp.MustCompile(`^/space\s+(?:delete|rm)\s+(\S+)$|删除共享(?:空间|文件夹)(?:里的|中的)?\s*(\S*)|(?i)delete\s+(\S+)\s+from (?:the )?shared`)
	spaceListRe   = regexp.MustCompile(`^/space\s+(?:list|ls)$|共享(?:空间|文件夹)(?:里)?有(?:什么|哪些)|(?i)list (?:the )?shared (?:space|folder)`)
	spaceReadRe   = regexp.MustCompile(`^/space\s+(?:read|cat)\s+(\S+)$|读取共享(?:空间|文件夹)(?:里的|中的)?\s*(\S*)|(?i)read\s+(\S+)\s+(?:from|in) (?:the )?shared`)
	spaceWriteRe  = regexp.MustCompile(`^/space\s+write\s+(\S+)\s+([\s\S]+)$|(?i)write\s+.+\s+to (?:the )?shared|写入共享(?:空间|文件夹)`)
	spaceHintRe   = regexp.MustCompile(`(?:写|保存|记录|write|save)[\s\S]*(?:共享|shared)|(?:共享|shared)[\s\S]*(?:写|保存|记录|write|save)`)
)

// cascade is evaluated in order; the order is part of the contract.
var cascade = []cascadeRule{
	func(t string) (model.Resolution, bool) { // capability discovery
		if discoveryRe.MatchString(t) {
			return matched("session.capabilities", nil, 0.95, "discovery_question"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // show modes
		if showModesRe.MatchString(t) {
			return matched("session.show_modes", nil, 0.95, "show_modes_query"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // proactive status
		if proStatusRe.MatchString(t) {
			return matched("session.proactive_status", nil, 0.95, "proactive_status_query"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // proactive tune
		m := proTuneRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		input := map[string]any{"enabled": m[1] == "on"}
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				input["intervalMinutes"] = n
			}
		}
		return matched("session.proactive_tune", input, 0.98, "proactive_tune_command"), true
	},
	func(t string) (model.Resolution, bool) { // explicit farewell
		if farewellRe.MatchString(t) {
			return matched("session.exit", map[string]any{"confirmed": true}, 0.995, "farewell_phrase"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // bare exit
		if exitRe.MatchString(t) {
			return matched("session.exit", nil, 0.99, "exit_command"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // list personas
		if listPersonaRe.MatchString(t) {
			return matched("persona.list", nil, 0.95, "list_personas"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // connect to persona
		if name := extractConnectTarget(t); name != "" {
			return matched("persona.connect", map[string]any{"name": name}, 0.95, "connect_command"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // create persona
		if name := extractCreateName(t); name != "" {
			return matched("persona.create", map[string]any{"name": name}, 0.95, "create_command"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // URL fetch
		if u := ExtractURL(t); u != "" {
			return matched("session.fetch_url", map[string]any{"url": u}, 0.92, "url_in_text"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // local file read
		if p := ExtractReadPath(t); p != "" {
			return matched("session.read_file", map[string]any{"path": p}, 0.92, "read_path_in_text"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // owner-scoped mode command
		m := ownerModeRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		input := map[string]any{
			"ownerToken": m[1],
			"modeKey":    strings.ToLower(m[2]),
			"modeValue":  m[3] == "on",
		}
		return matched("session.set_mode", input, 0.98, "owner_mode_command"), true
	},
	func(t string) (model.Resolution, bool) { // owner auth only
		m := ownerAuthRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		return matched("session.owner_auth", map[string]any{"ownerToken": m[1]}, 0.98, "owner_auth_command"), true
	},
	func(t string) (model.Resolution, bool) { // standalone mode update
		m := modeUpdateRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		input := map[string]any{
			"modeKey":   strings.ToLower(m[1]),
			"modeValue": m[2] == "on",
		}
		if m[3] != "" {
			input["confirmed"] = m[3] == "true"
		}
		return matched("session.set_mode", input, 0.9, "mode_update_command"), true
	},
	func(t string) (model.Resolution, bool) { // shared space setup
		m := spaceSetupRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		return matched("session.shared_space_setup", map[string]any{"path": firstGroup(m)}, 0.95, "shared_space_setup"), true
	},
	func(t string) (model.Resolution, bool) { // shared space delete (before read)
		m := spaceDeleteRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		return matched("session.shared_space_delete", map[string]any{"path": firstGroup(m)}, 0.95, "shared_space_delete"), true
	},
	func(t string) (model.Resolution, bool) { // shared space list
		if spaceListRe.MatchString(t) {
			return matched("session.shared_space_list", nil, 0.95, "shared_space_list"), true
		}
		return model.Resolution{}, false
	},
	func(t string) (model.Resolution, bool) { // shared space read
		m := spaceReadRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		return matched("session.shared_space_read", map[string]any{"path": firstGroup(m)}, 0.95, "shared_space_read"), true
	},
	func(t string) (model.Resolution, bool) { // shared space write
		m := spaceWriteRe.FindStringSubmatch(t)
		if m == nil {
			return model.Resolution{}, false
		}
		input := map[string]any{"path": "", "content": ""}
		if m[1] != "" {
			input["path"] = m[1]
			input["content"] = m[2]
		}
		return matched("session.shared_space_write", input, 0.95, "shared_space_write"), true
	},
	func(t string) (model.Resolution, bool) { // shared space write hint, re-prompt
		if spaceHintRe.MatchString(t) {
			return matched("session.shared_space_write", map[string]any{"path": "", "content": ""}, 0.85, "shared_space_write_hint"), true
		}
		return model.Resolution{}, false
	},
}

func extractConnectTarget(text string) string {
	for _, re := range []*regexp.Regexp{connectSlashRe, connectZhRe, connectEnRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractCreateName(text string) string {
	for _, re := range []*regexp.Regexp{createSlashRe, createZhRe, createEnRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// firstGroup returns the first non-empty capture group, accommodating
// alternated patterns where the argument may land in different groups.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
