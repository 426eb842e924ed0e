package guard

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kagami-ai/kagami/internal/capability"
	"github.com/kagami-ai/kagami/internal/model"
)

// Evaluate checks one capability request against session state.
//
// Dispatch order per capability is fixed; every branch terminates in
// allow, confirm_required, or rejected. The final catch-all allow covers
// capabilities with no special rule (owner-only gating happens via the
// registry metadata upstream).
func Evaluate(req *model.CallRequest, ctx *SessionContext) model.GuardResult {
	return evaluateAt(req, ctx, time.Now())
}

func evaluateAt(req *model.CallRequest, ctx *SessionContext, now time.Time) model.GuardResult {
	if _, ok := capability.Lookup(req.Name); !ok {
		return rejected(req.Name, model.ReasonCapabilityNotFound)
	}

	switch req.Name {
	case "session.read_file":
		return evalReadFile(req, ctx)
	case "session.fetch_url":
		return evalFetchURL(req, ctx)
	case "session.exit":
		if req.BoolInput("confirmed") {
			return allow(req.Name, nil)
		}
		return confirmRequired(req.Name, nil)
	case "session.set_mode":
		return evalSetMode(req, ctx, now)
	case "session.owner_auth":
		if ctx.OwnerKey != "" && req.StringInput("ownerToken") == ctx.OwnerKey {
			return allow(req.Name, nil)
		}
		return rejected(req.Name, model.ReasonOwnerAuthFailed)
	case "persona.create":
		name := strings.TrimSpace(req.StringInput("name"))
		if name == "" {
			return rejected(req.Name, model.ReasonMissingPersonaName)
		}
		norm := map[string]any{"name": name}
		if req.BoolInput("confirmed") {
			return allow(req.Name, norm)
		}
		return confirmRequired(req.Name, norm)
	case "session.shared_space_setup":
		return evalSharedSetup(req)
	case "session.shared_space_list":
		if ctx.SharedSpacePath == "" {
			return rejected(req.Name, model.ReasonSharedSpaceNotConfigured)
		}
		return allow(req.Name, nil)
	case "session.shared_space_read", "session.shared_space_write", "session.shared_space_delete":
		return evalSharedAccess(req, ctx)
	}

	return allow(req.Name, nil)
}

func evalReadFile(req *model.CallRequest, ctx *SessionContext) model.GuardResult {
	path := strings.TrimSpace(req.StringInput("path"))
	if path == "" {
		return rejected(req.Name, model.ReasonMissingPath)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(ctx.CWD, path)
	}
	path = filepath.Clean(path)
	norm := map[string]any{"path": path}

	if req.BoolInput("confirmed") || ctx.ApprovedReadPaths[path] {
		return allow(req.Name, norm)
	}
	return confirmRequired(req.Name, norm)
}

func evalFetchURL(req *model.CallRequest, ctx *SessionContext) model.GuardResult {
	raw := strings.TrimSpace(req.StringInput("url"))
	if raw == "" {
		return rejected(req.Name, model.ReasonMissingURL)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return rejected(req.Name, model.ReasonInvalidURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return rejected(req.Name, model.ReasonInvalidURLScheme)
	}

	origin := u.Scheme + "://" + u.Host
	norm := map[string]any{"url": raw, "origin": origin}

	if len(ctx.FetchOriginAllowlist) > 0 && !originAllowed(origin, u.Hostname(), ctx.FetchOriginAllowlist) {
		return rejected(req.Name, model.ReasonFetchOriginNotAllowed)
	}

	// Confirmation is keyed by origin, not full URL.
	if req.BoolInput("confirmed") || ctx.ApprovedFetchOrigins[origin] {
		return allow(req.Name, norm)
	}
	return confirmRequired(req.Name, norm)
}

// originAllowed matches an allowlist entry against the full origin, the
// bare hostname, or a "*.suffix" wildcard on the hostname.
func originAllowed(origin, hostname string, allowlist []string) bool {
	for _, entry := range allowlist {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.EqualFold(entry, origin) || strings.EqualFold(entry, hostname) {
			return true
		}
		if strings.HasPrefix(entry, "*.") {
			suffix := entry[1:] // ".example.com"
			if strings.HasSuffix(strings.ToLower(hostname), strings.ToLower(suffix)) {
				return true
			}
		}
	}
	return false
}

func evalSetMode(req *model.CallRequest, ctx *SessionContext, now time.Time) model.GuardResult {
	key := strings.TrimSpace(req.StringInput("modeKey"))
	if key == "" || !KnownModeKeys[key] {
		return rejectedOwner(req.Name, model.ReasonMissingModeKey)
	}
	val, ok := req.Input["modeValue"].(bool)
	if !ok {
		return rejectedOwner(req.Name, model.ReasonMissingModeValue)
	}

	// Owner auth is required regardless of confirmation state.
	token := req.StringInput("ownerToken")
	authorized := (ctx.OwnerKey != "" && token == ctx.OwnerKey) || ctx.OwnerSessionActive(now)
	if !authorized {
		return rejectedOwner(req.Name, model.ReasonOwnerAuthFailed)
	}

	norm := map[string]any{"modeKey": key, "modeValue": val}
	if req.BoolInput("confirmed") {
		res := allow(req.Name, norm)
		res.RequiresOwnerAuth = true
		return res
	}
	res := confirmRequired(req.Name, norm)
	res.RequiresOwnerAuth = true
	return res
}

func evalSharedSetup(req *model.CallRequest) model.GuardResult {
	path := strings.TrimSpace(req.StringInput("path"))
	if path == "" {
		return rejected(req.Name, model.ReasonMissingPath)
	}
	path = expandTilde(path)
	norm := map[string]any{"path": filepath.Clean(path)}
	if req.BoolInput("confirmed") {
		return allow(req.Name, norm)
	}
	return confirmRequired(req.Name, norm)
}

func evalSharedAccess(req *model.CallRequest, ctx *SessionContext) model.GuardResult {
	root := ctx.SharedSpacePath
	if root == "" {
		return rejected(req.Name, model.ReasonSharedSpaceNotConfigured)
	}
	root = filepath.Clean(root)

	norm := map[string]any{}
	if path := strings.TrimSpace(req.StringInput("path")); path != "" {
		resolved := path
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(root, resolved)
		}
		resolved = filepath.Clean(resolved)
		if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return rejected(req.Name, model.ReasonPathOutsideSharedSpace)
		}
		norm["path"] = resolved
	}
	if content := req.StringInput("content"); content != "" {
		norm["content"] = content
	}

	if req.Name == "session.shared_space_delete" && !req.BoolInput("confirmed") {
		return confirmRequired(req.Name, norm)
	}
	return allow(req.Name, norm)
}

func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

func allow(cap string, norm map[string]any) model.GuardResult {
	return model.GuardResult{Status: model.StatusAllow, Capability: cap, NormalizedInput: norm}
}

func confirmRequired(cap string, norm map[string]any) model.GuardResult {
	return model.GuardResult{
		Status:          model.StatusConfirmRequired,
		Reason:          model.ReasonConfirmationRequired,
		Capability:      cap,
		NormalizedInput: norm,
	}
}

func rejected(cap, reason string) model.GuardResult {
	return model.GuardResult{Status: model.StatusRejected, Reason: reason, Capability: cap}
}

func rejectedOwner(cap, reason string) model.GuardResult {
	res := rejected(cap, reason)
	res.RequiresOwnerAuth = true
	return res
}
