package targets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/login-probe/pkg/configfile"
)

// Package targets loads the set of auth servers to probe from YAML/JSON files.

const (
	ModeLogin   = "login"
	ModeRefresh = "refresh"

	// DefaultID names the target built from plain configuration.
	DefaultID = "default"
)

// Target describes one auth server and the credentials used against it.
type Target struct {
	ID             string `json:"id" yaml:"id"`
	BaseURL        string `json:"base_url" yaml:"base_url"`
	AuthData       string `json:"auth_data" yaml:"auth_data"`
	Password       string `json:"password" yaml:"password"`
	BearerToken    string `json:"bearer_token" yaml:"bearer_token"`
	Mode           string `json:"mode" yaml:"mode"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	// SessionTarget names the target whose cached session is reused; defaults to ID.
	SessionTarget  string `json:"session_target" yaml:"session_target"`
}

type registryFile struct {
	Targets []Target `json:"targets" yaml:"targets"`
}

// Registry holds validated targets in file order.
type Registry struct {
	targets []Target
}

// NewRegistry validates targets and builds a registry.
func NewRegistry(targets ...Target) (*Registry, error) {
	if len(targets) == 0 {
		return nil, errors.New("no targets configured")
	}

	reg := &Registry{targets: make([]Target, len(targets))}
	seen := make(map[string]struct{}, len(targets))
	for i := range targets {
		t := sanitizeTarget(targets[i])
		if err := validateTarget(t); err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		if _, exists := seen[t.ID]; exists {
			return nil, fmt.Errorf("duplicate target id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		reg.targets[i] = t
	}
	return reg, nil
}

// LoadRegistry loads targets from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	var parsed registryFile
	if err := configfile.Load(path, "targets", &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Targets) == 0 {
		return nil, errors.New("targets file contains no targets entries")
	}
	return NewRegistry(parsed.Targets...)
}

func sanitizeTarget(t Target) Target {
	t.ID = strings.TrimSpace(t.ID)
	t.BaseURL = strings.TrimSpace(t.BaseURL)
	t.AuthData = strings.TrimSpace(t.AuthData)
	t.BearerToken = strings.TrimSpace(t.BearerToken)
	t.SessionTarget = strings.TrimSpace(t.SessionTarget)
	t.Mode = strings.ToLower(strings.TrimSpace(t.Mode))
	if t.Mode == "" {
		t.Mode = ModeLogin
	}
	if t.TimeoutSeconds < 0 {
		t.TimeoutSeconds = 0
	}
	return t
}

func validateTarget(t Target) error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	if t.BaseURL == "" {
		return fmt.Errorf("base_url is required for target %q", t.ID)
	}
	if t.Mode != ModeLogin && t.Mode != ModeRefresh {
		return fmt.Errorf("unsupported mode %q for target %q", t.Mode, t.ID)
	}
	if t.Mode == ModeLogin && (t.AuthData == "" || t.Password == "") {
		return fmt.Errorf("auth_data and password are required for target %q", t.ID)
	}
	return nil
}

// All returns a copy of the targets in declaration order.
func (r *Registry) All() []Target {
	if r == nil {
		return nil
	}
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Timeout returns the per-request timeout; zero means none.
func (t Target) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// SessionKey is the session cache key for the target.
func (t Target) SessionKey() string {
	if t.SessionTarget != "" {
		return t.SessionTarget
	}
	return t.ID
}

// Redacted returns a copy safe to log.
func (t Target) Redacted() Target {
	if t.Password != "" {
		t.Password = "***"
	}
	if t.BearerToken != "" {
		t.BearerToken = "***"
	}
	return t
}
