package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Package storage provides local DB/cache abstraction.

// ErrNotFound is returned when no live session exists for a target.
var ErrNotFound = errors.New("session not found")

// Session is the reusable login state returned by the auth server.
type Session struct {
	TargetID  string    `json:"target_id"`
	UID       string    `json:"uid"`
	JWT       string    `json:"jwt"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store caches sessions per target.
type Store interface {
	Close() error
	LoadSession(targetID string) (Session, error)
	SaveSession(s Session) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SessionTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSessionTTL      = time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                        { return nil }
func (noopStore) LoadSession(string) (Session, error) { return Session{}, ErrNotFound }
func (noopStore) SaveSession(Session) error           { return nil }
