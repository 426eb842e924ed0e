package intent

import (
	"net/url"
	"regexp"
	"strings"
)

// urlSafe is the ASCII set a URL may contain. Anything outside it ends
// the URL, which stops trailing CJK text from being swallowed.
const urlSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._~:/?#[]@!$&'()*+,;=%"

// trailingPunct lists half- and full-width punctuation stripped from the
// end of an extracted URL.
var trailingPunct = []string{
	"。", "，", "！", "？", "；", "：", "、", "）", "」", "』", "”", "’",
	".", ",", "!", "?", ";", ":", ")", "]", "\"", "'", ">",
}

var (
	fetchPrefixRe = regexp.MustCompile(`^/fetch\s+(\S+)`)
	httpRe        = regexp.MustCompile(`https?://\S+`)
)

// ExtractURL pulls a fetchable URL out of free-form text. An explicit
// "/fetch <url>" prefix wins; otherwise the first http(s) occurrence is
// taken, sanitized, and validated. Returns "" when no valid URL exists.
func ExtractURL(text string) string {
	text = strings.TrimSpace(text)

	var raw string
	if m := fetchPrefixRe.FindStringSubmatch(text); m != nil {
		raw = m[1]
	} else if m := httpRe.FindString(text); m != "" {
		raw = m
	} else {
		return ""
	}

	raw = truncateUnsafe(raw)
	for {
		stripped := raw
		for _, p := range trailingPunct {
			stripped = strings.TrimSuffix(stripped, p)
		}
		if stripped == raw {
			break
		}
		raw = stripped
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return raw
}

func truncateUnsafe(s string) string {
	for i, r := range s {
		if r > 127 || !strings.ContainsRune(urlSafe, r) {
			return s[:i]
		}
	}
	return s
}

// reservedSlashCommands are inputs starting with "/" that are commands,
// not filesystem paths.
var reservedSlashCommands = []string{
	"/read", "/fetch", "/exit", "/quit", "/connect", "/new",
	"/proactive", "/modes", "/personas", "/space",
}

// knownPathRoots anchor direct absolute-path recognition.
var knownPathRoots = []string{"/Users", "/home", "/tmp", "/var", "/opt", "/etc"}

var (
	readPrefixRe  = regexp.MustCompile(`^/read\s+(\S+)`)
	zhReadRe      = regexp.MustCompile(`(?:读取|阅读|帮我读(?:一下|下)?)\s*([^\s，。！？]+)`)
	enReadRe      = regexp.MustCompile(`(?i)\b(?:read|open)\s+(\S+)`)
	quotedPathRe  = regexp.MustCompile(`["'“”‘’](/[^"'“”‘’]+)["'“”‘’]`)
	absTokenRe    = regexp.MustCompile(`(/[\w./-]+)`)
	zhParticleRe  = regexp.MustCompile(`^(?:吗|呢|吧|嘛|么)[？?。!！]*$`)
	readHintRe    = regexp.MustCompile(`(?i)read|open|file|读|文件`)
)

// ExtractReadPath pulls a local file path out of free-form text.
// URL-bearing inputs are handled by ExtractURL instead. Returns "" when
// nothing path-like is present.
func ExtractReadPath(text string) string {
	text = strings.TrimSpace(text)
	if strings.Contains(text, "http://") || strings.Contains(text, "https://") {
		return ""
	}

	// Direct absolute path, unless it is a reserved slash command.
	if strings.HasPrefix(text, "/") && !isReservedCommand(text) {
		for _, root := range knownPathRoots {
			if strings.HasPrefix(text, root) {
				return strings.Fields(text)[0]
			}
		}
	}

	if m := readPrefixRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	if m := zhReadRe.FindStringSubmatch(text); m != nil {
		candidate := m[1]
		// "帮我读一下吗" leaves only a question particle behind.
		if zhParticleRe.MatchString(candidate) {
			return ""
		}
		return strings.TrimRight(candidate, "吗呢吧嘛么？?")
	}

	if m := enReadRe.FindStringSubmatch(text); m != nil {
		candidate := strings.Trim(m[1], `"'“”‘’`)
		// Plain words after "read" are conversation, not paths.
		if strings.ContainsAny(candidate, "/.") {
			return candidate
		}
	}

	if readHintRe.MatchString(text) {
		if m := quotedPathRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
		if m := absTokenRe.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}

	return ""
}

func isReservedCommand(text string) bool {
	first := strings.Fields(text)[0]
	for _, cmd := range reservedSlashCommands {
		if strings.EqualFold(first, cmd) {
			return true
		}
	}
	return false
}
