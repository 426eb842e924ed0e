package intent

// anchorThreshold is the minimum semantic score for anchor routing.
const anchorThreshold = 0.78

// routingAnchor ties one canonical phrase to a routable capability.
// Capabilities whose arguments cannot be re-extracted from the text are
// discarded and fall through to the rule cascade.
type routingAnchor struct {
	Capability string
	Phrase     string
}

var routingAnchors = []routingAnchor{
	{"session.capabilities", "what can you do 你能做什么 你有什么能力"},
	{"session.show_modes", "show current modes 显示当前模式开关"},
	{"session.proactive_status", "proactive status 主动消息状态怎么样"},
	{"persona.list", "list all personas 列出所有人格"},
	{"persona.connect", "switch to another persona 切换到其他人格"},
	{"persona.create", "create a new persona 创建一个新人格"},
}

func anchorPhrases() []string {
	out := make([]string, len(routingAnchors))
	for i, a := range routingAnchors {
		out[i] = a.Phrase
	}
	return out
}

func anchorCapability(phrase string) string {
	for _, a := range routingAnchors {
		if a.Phrase == phrase {
			return a.Capability
		}
	}
	return ""
}
