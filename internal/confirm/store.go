// Package confirm persists pending capability confirmations so that a
// confirm_required verdict can be resolved by a later protocol call.
package confirm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// validKey matches alphanumeric, dash, underscore, and dot characters only.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// validateKey rejects keys that could cause path traversal.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("key must not contain '..'")
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("key contains invalid characters: only alphanumeric, dash, underscore, and dot are allowed")
	}
	return nil
}

// Status represents the state of a confirmation request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusConsumed Status = "consumed"
	StatusExpired  Status = "expired"
)

// Confirmation is one pending capability confirmation and its state.
type Confirmation struct {
	Key        string     `json:"key"`
	Status     Status     `json:"status"`
	Capability string     `json:"capability"`
	Target     string     `json:"target,omitempty"` // resolved path or origin
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Store manages confirmation files on disk.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store backed by the given directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("cannot create confirmation directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns the default confirmation store directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "kagami-pending")
	}
	return filepath.Join(home, ".kagami", "pending")
}

// Key derives a stable store key from a capability and its target.
// Everything outside the allowed character set collapses to dashes.
func Key(capability, target string) string {
	raw := capability
	if target != "" {
		raw += "." + target
	}
	var b strings.Builder
	dash := false
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			b.WriteRune(r)
			dash = false
		default:
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// Request creates a pending confirmation. No-op if one already exists.
func (s *Store) Request(key, capability, target, reason string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid confirmation key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}

	c := Confirmation{
		Key:        key,
		Status:     StatusPending,
		Capability: capability,
		Target:     target,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	return s.writeAtomic(path, c)
}

// Approve marks a confirmation as approved. If duration > 0, sets an
// expiration; zero means one-time (consumed on first use).
func (s *Store) Approve(key string, duration time.Duration) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid confirmation key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(key)
	if err != nil {
		return fmt.Errorf("confirmation %q not found: %w", key, err)
	}

	c.Status = StatusApproved
	now := time.Now().UTC()
	c.ResolvedAt = &now
	if duration > 0 {
		exp := now.Add(duration)
		c.ExpiresAt = &exp
	}
	return s.writeAtomic(s.path(key), *c)
}

// Deny marks a confirmation as denied.
func (s *Store) Deny(key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid confirmation key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(key)
	if err != nil {
		return fmt.Errorf("confirmation %q not found: %w", key, err)
	}

	c.Status = StatusDenied
	now := time.Now().UTC()
	c.ResolvedAt = &now
	return s.writeAtomic(s.path(key), *c)
}

// Check returns the current status. Approved entries past their
// deadline degrade to StatusExpired.
func (s *Store) Check(key string) (Status, error) {
	if err := validateKey(key); err != nil {
		return "", fmt.Errorf("invalid confirmation key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(key)
	if err != nil {
		return "", fmt.Errorf("confirmation %q not found", key)
	}

	if c.Status == StatusApproved && c.ExpiresAt != nil && time.Now().UTC().After(*c.ExpiresAt) {
		c.Status = StatusExpired
		s.writeAtomic(s.path(key), *c)
		return StatusExpired, nil
	}
	return c.Status, nil
}

// Consume marks a one-time confirmation as used.
func (s *Store) Consume(key string) error {
	if err := validateKey(key); err != nil {
		return fmt.Errorf("invalid confirmation key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.read(key)
	if err != nil {
		return fmt.Errorf("confirmation %q not found: %w", key, err)
	}
	if c.Status == StatusConsumed {
		return fmt.Errorf("confirmation %q already consumed", key)
	}

	c.Status = StatusConsumed
	now := time.Now().UTC()
	c.ResolvedAt = &now
	return s.writeAtomic(s.path(key), *c)
}

// List returns all confirmations in the store.
func (s *Store) List() ([]Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Confirmation
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		c, err := s.read(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// Cleanup removes all confirmation files in the store.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) read(key string) (*Confirmation, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, err
	}
	var c Confirmation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) writeAtomic(path string, c Confirmation) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
