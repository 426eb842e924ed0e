// Package guard evaluates capability call requests against per-session
// state. It validates and normalizes only; executing the action after an
// allow is the caller's job. No branch throws and none performs I/O.
package guard

import (
	"sync"
	"time"
)

// DefaultOwnerSessionTTL bounds an owner-token grant. Expiry is checked
// by wall clock at call time, not by a background timer.
const DefaultOwnerSessionTTL = 15 * time.Minute

// KnownModeKeys are the mode flags set_mode may touch.
var KnownModeKeys = map[string]bool{
	"adult_mode":       true,
	"fiction_mode":     true,
	"strict_grounding": true,
	"proactive":        true,
}

// SessionContext is the mutable per-session state the guard reads.
// Approved paths and origins only grow within a session; a first-use
// confirmation becomes a permanent approval for that session. One
// goroutine per session, or hold the mutex around evaluate-then-mutate.
type SessionContext struct {
	Mu sync.Mutex

	CWD                  string
	OwnerKey             string
	OwnerSessionTTL      time.Duration
	OwnerAuthorizedAt    time.Time
	ApprovedReadPaths    map[string]bool
	ApprovedFetchOrigins map[string]bool
	FetchOriginAllowlist []string
	SharedSpacePath      string
	Modes                map[string]bool
}

// NewSessionContext creates a context rooted at cwd with empty approvals.
func NewSessionContext(cwd string) *SessionContext {
	return &SessionContext{
		CWD:                  cwd,
		OwnerSessionTTL:      DefaultOwnerSessionTTL,
		ApprovedReadPaths:    make(map[string]bool),
		ApprovedFetchOrigins: make(map[string]bool),
		Modes:                make(map[string]bool),
	}
}

// OwnerSessionActive reports whether a prior owner_auth grant is still
// inside its window at the given instant.
func (c *SessionContext) OwnerSessionActive(now time.Time) bool {
	if c.OwnerAuthorizedAt.IsZero() {
		return false
	}
	ttl := c.OwnerSessionTTL
	if ttl <= 0 {
		ttl = DefaultOwnerSessionTTL
	}
	return now.Before(c.OwnerAuthorizedAt.Add(ttl))
}

// AuthorizeOwner starts (or refreshes) the owner session window.
func (c *SessionContext) AuthorizeOwner(now time.Time) {
	c.OwnerAuthorizedAt = now
}

// ExpireOwnerAuth drops the owner grant.
func (c *SessionContext) ExpireOwnerAuth() {
	c.OwnerAuthorizedAt = time.Time{}
}

// ApproveReadPath records a confirmed read so later reads of the same
// resolved path do not re-prompt.
func (c *SessionContext) ApproveReadPath(path string) {
	if c.ApprovedReadPaths == nil {
		c.ApprovedReadPaths = make(map[string]bool)
	}
	c.ApprovedReadPaths[path] = true
}

// ApproveFetchOrigin records a confirmed fetch origin.
func (c *SessionContext) ApproveFetchOrigin(origin string) {
	if c.ApprovedFetchOrigins == nil {
		c.ApprovedFetchOrigins = make(map[string]bool)
	}
	c.ApprovedFetchOrigins[origin] = true
}

// SetMode flips a mode flag after the guard has allowed set_mode.
func (c *SessionContext) SetMode(key string, value bool) {
	if c.Modes == nil {
		c.Modes = make(map[string]bool)
	}
	c.Modes[key] = value
}
