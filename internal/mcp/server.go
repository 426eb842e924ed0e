// Package mcp exposes the trust layer over an MCP stdio server. One
// server process serves one protocol session; its session context is
// guarded by the context mutex so tool calls observe each other's
// confirmations in order.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kagami-ai/kagami/internal/audit"
	"github.com/kagami-ai/kagami/internal/config"
	"github.com/kagami-ai/kagami/internal/confirm"
	"github.com/kagami-ai/kagami/internal/consistency"
	"github.com/kagami-ai/kagami/internal/guard"
	"github.com/kagami-ai/kagami/internal/intent"
)

// Config holds MCP server configuration.
type Config struct {
	ConfigPath   string
	CWD          string
	AuditLogPath string
}

// Server wraps the MCP SDK server with the kagami guard surfaces.
type Server struct {
	mcpServer  *mcpsdk.Server
	cfg        *config.Config
	configHash string
	sessionID  string
	session    *guard.SessionContext
	resolver   *intent.Resolver
	kernel     *consistency.Kernel
	confirms   *confirm.Store
	auditLog   *audit.Log
}

// New creates an MCP server with loaded config and a fresh session.
func New(c Config) (*Server, error) {
	cfg, hash, err := config.LoadWithHash(c.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	confirms, err := confirm.NewStore(confirm.DefaultDir())
	if err != nil {
		return nil, fmt.Errorf("failed to create confirmation store: %w", err)
	}

	auditPath := c.AuditLogPath
	if auditPath == "" {
		auditPath = cfg.AuditLogPath
	}
	var auditLog *audit.Log
	if auditPath != "" {
		auditLog, err = audit.Open(auditPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	s := &Server{
		cfg:        cfg,
		configHash: hash,
		sessionID:  "sess-" + uuid.NewString(),
		session:    cfg.NewSessionContext(c.CWD),
		resolver:   intent.NewResolver(nil),
		kernel:     consistency.New(nil),
		confirms:   confirms,
		auditLog:   auditLog,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "kagami",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Reload swaps in a freshly loaded config. Session state earned through
// confirmations survives; config-derived fields (allowlist, owner key,
// shared space, TTL) are replaced.
func (s *Server) Reload(cfg *config.Config, hash string) {
	s.session.Mu.Lock()
	defer s.session.Mu.Unlock()

	s.cfg = cfg
	s.configHash = hash
	s.session.OwnerKey = cfg.OwnerKey()
	if cfg.OwnerSessionTTLMinutes > 0 {
		s.session.OwnerSessionTTL = time.Duration(cfg.OwnerSessionTTLMinutes) * time.Minute
	}
	s.session.FetchOriginAllowlist = append([]string(nil), cfg.FetchOriginAllowlist...)
	if cfg.SharedSpacePath != "" {
		s.session.SharedSpacePath = cfg.SharedSpacePath
	}
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

func (s *Server) recordAudit(kind, capability, target, decision, reason, ruleIDs, traceID string) {
	if s.auditLog == nil {
		return
	}
	s.auditLog.Record(audit.Entry{
		Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		SessionID:  s.sessionID,
		TraceID:    traceID,
		Kind:       kind,
		Capability: capability,
		Target:     target,
		Decision:   decision,
		Reason:     reason,
		RuleIDs:    ruleIDs,
		ConfigHash: s.configHash,
	})
}

// registerTools adds all kagami tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "kagami_resolve",
		Description: "Resolve raw user text to a capability call request with a confidence and routing tier.",
	}, s.handleResolve)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "kagami_evaluate",
		Description: "Evaluate a capability call request against session policy. Returns allow, confirm_required, or rejected.",
	}, s.handleEvaluate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "kagami_review",
		Description: "Run the consistency guard chain over candidate reply text. Returns the final text and an allow/rewrite/reject verdict.",
	}, s.handleReview)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "kagami_capabilities",
		Description: "List registered capabilities with risk tier, owner-only flag, and confirmation requirement.",
	}, s.handleCapabilities)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "kagami_approve",
		Description: "Approve a pending confirmation by key. Use after an evaluation returns confirm_required.",
	}, s.handleApprove)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "kagami_pending",
		Description: "List all pending capability confirmations.",
	}, s.handlePending)
}
