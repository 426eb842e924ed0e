// Package config loads the persona trust-layer configuration from YAML
// with environment overrides. Missing file returns defaults; invalid
// YAML returns an error.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kagami-ai/kagami/internal/guard"
	"github.com/kagami-ai/kagami/internal/model"
)

// Config holds all configurable trust-layer parameters.
type Config struct {
	PersonaName            string             `yaml:"persona_name"`
	OwnerKeyEnv            string             `yaml:"owner_key_env"`
	Policy                 model.PolicyMode   `yaml:"policy"`
	StrictMemoryGrounding  bool               `yaml:"strict_memory_grounding"`
	AdultContext           bool               `yaml:"adult_context"`
	FictionalRoleplay      bool               `yaml:"fictional_roleplay"`
	OwnerSessionTTLMinutes int                `yaml:"owner_session_ttl_minutes"`
	FetchOriginAllowlist   []string           `yaml:"fetch_origin_allowlist"`
	SharedSpacePath        string             `yaml:"shared_space_path"`
	AuditLogPath           string             `yaml:"audit_log_path"`
	Constitution           model.Constitution `yaml:"constitution"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PersonaName:            "小镜",
		OwnerKeyEnv:            "KAGAMI_OWNER_KEY",
		Policy:                 model.PolicySoft,
		StrictMemoryGrounding:  true,
		OwnerSessionTTLMinutes: 15,
		Constitution: model.Constitution{
			Mission: "陪伴用户，诚实地只讲有依据的事。",
			Values:  []string{"honesty", "groundedness", "equal footing"},
			Boundaries: []string{
				"deny:coercion",
				"deny:violence",
				"deny:self_harm_encouragement",
				"deny:minor_content",
			},
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "kagami", "config.yaml")
	}
	return filepath.Join(home, ".kagami", "config.yaml")
}

// Load reads configuration from a YAML file. Empty path falls back to
// the default location. A .env file in the working directory is loaded
// first so env indirections resolve.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 hash of the
// raw YAML bytes for audit correlation. Defaults hash as empty input.
func LoadWithHash(path string) (*Config, string, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			cfg := Default()
			applyEnv(cfg)
			return cfg, "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified fields.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Policy != model.PolicySoft && cfg.Policy != model.PolicyHard {
		return nil, "", fmt.Errorf("invalid policy %q: want soft or hard", cfg.Policy)
	}
	applyEnv(cfg)
	return cfg, hash, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("KAGAMI_POLICY"); v == string(model.PolicySoft) || v == string(model.PolicyHard) {
		cfg.Policy = model.PolicyMode(v)
	}
	if v := os.Getenv("KAGAMI_SHARED_SPACE"); v != "" {
		cfg.SharedSpacePath = v
	}
	if v := os.Getenv("KAGAMI_AUDIT_LOG"); v != "" {
		cfg.AuditLogPath = v
	}
}

// OwnerKey resolves the owner token through the configured env
// indirection. The token itself never lives in the YAML file.
func (c *Config) OwnerKey() string {
	env := c.OwnerKeyEnv
	if env == "" {
		env = "KAGAMI_OWNER_KEY"
	}
	return strings.TrimSpace(os.Getenv(env))
}

// NewSessionContext builds a fresh session context from this config.
func (c *Config) NewSessionContext(cwd string) *guard.SessionContext {
	ctx := guard.NewSessionContext(cwd)
	ctx.OwnerKey = c.OwnerKey()
	if c.OwnerSessionTTLMinutes > 0 {
		ctx.OwnerSessionTTL = time.Duration(c.OwnerSessionTTLMinutes) * time.Minute
	}
	ctx.FetchOriginAllowlist = append([]string(nil), c.FetchOriginAllowlist...)
	ctx.SharedSpacePath = c.SharedSpacePath
	ctx.Modes = map[string]bool{
		"adult_mode":       c.AdultContext,
		"fiction_mode":     c.FictionalRoleplay,
		"strict_grounding": c.StrictMemoryGrounding,
		"proactive":        false,
	}
	return ctx
}
