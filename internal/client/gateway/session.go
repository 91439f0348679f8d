package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/camadaviva/snaps/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Session is a signed-in viewer with its access token.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
}

// Valid reports whether the session can still authenticate calls at now.
func (s Session) Valid(now time.Time) bool {
	return s.AccessToken != "" && s.UserID != uuid.Nil && now.Before(s.ExpiresAt)
}

// Viewer is the identity the session belongs to.
func (s Session) Viewer() model.Viewer { return model.Viewer{ID: s.UserID, Email: s.Email} }

// tokenExpiry reads exp from an access token without verifying it; the
// server does that. fallback is used when the claim is missing.
func tokenExpiry(tok string, fallback time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil || claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time
}

// ErrNoSession is returned by Store.Load when nothing is stored.
var ErrNoSession = errors.New("no session (sign in required)")

// Store persists the session between runs.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// ConfigDir is $XDG_CONFIG_HOME/snaps, falling back to ~/.config/snaps.
func ConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "snaps")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "snaps")
}

// FileStore keeps the session as JSON in a single file.
type FileStore struct{ Path string }

// DefaultFileStore stores the session in ConfigDir()/token.json.
func DefaultFileStore() FileStore { return FileStore{Path: filepath.Join(ConfigDir(), "token.json")} }

func (f FileStore) Load() (Session, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("session file %s: %w", f.Path, err)
	}
	return s, nil
}

func (f FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o600)
}

func (f FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemStore keeps the session in memory.
type MemStore struct {
	mu sync.Mutex
	s  *Session
}

func (m *MemStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return Session{}, ErrNoSession
	}
	return *m.s, nil
}

func (m *MemStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = &s
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}
