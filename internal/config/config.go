package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Mining is the persisted configuration document consumed by the controller.
type Mining struct {
	WalletAddress string `json:"wallet_address"`
	PoolURL       string `json:"pool_url"`
	WorkerName    string `json:"worker_name"`
	UseSSL        bool   `json:"use_ssl"`
	ProfileName   string `json:"profile_name"`
}

// Patch describes a partial configuration update. Nil fields are left
// unchanged. The update is applied all-or-nothing: if the patched document
// fails validation, neither memory nor disk is touched.
type Patch struct {
	WalletAddress *string
	PoolURL       *string
	WorkerName    *string
	UseSSL        *bool
	ProfileName   *string
}

func (p Patch) apply(m Mining) Mining {
	if p.WalletAddress != nil {
		m.WalletAddress = strings.TrimSpace(*p.WalletAddress)
	}
	if p.PoolURL != nil {
		m.PoolURL = strings.TrimSpace(*p.PoolURL)
	}
	if p.WorkerName != nil {
		m.WorkerName = strings.TrimSpace(*p.WorkerName)
	}
	if p.UseSSL != nil {
		m.UseSSL = *p.UseSSL
	}
	if p.ProfileName != nil {
		m.ProfileName = strings.TrimSpace(*p.ProfileName)
	}
	return m
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.WalletAddress == nil && p.PoolURL == nil && p.WorkerName == nil &&
		p.UseSSL == nil && p.ProfileName == nil
}

// Store owns the configuration document and the onyx data directory layout.
type Store struct {
	dir  string
	path string

	mu      sync.Mutex
	current Mining
}

// DefaultDir returns the absolute path of the onyx data directory.
func DefaultDir() (string, error) {
	return ExpandPath(defaultDataDir)
}

// Open loads the configuration store rooted at dir, creating the directory
// and a template document when missing. An empty dir selects the default
// data directory.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		resolved, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	} else {
		resolved, err := ExpandPath(dir)
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory %q: %w", dir, err)
	}

	s := &Store{dir: dir, path: filepath.Join(dir, "config.json")}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var doc Mining
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", s.path, err)
		}
		s.current = doc
	case errors.Is(err, fs.ErrNotExist):
		s.current = Default()
		if err := s.persist(s.current); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read config %q: %w", s.path, err)
	}

	return s, nil
}

// Snapshot returns an immutable copy of the current document. Callers that
// need fresh data re-fetch; the copy is never updated in place.
func (s *Store) Snapshot() Mining {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update validates and persists the patched document, then swaps the
// in-memory copy. A validation or write failure leaves the prior document
// untouched on disk and in memory.
func (s *Store) Update(patch Patch) (Mining, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.apply(s.current)
	if err := next.Validate(); err != nil {
		return s.current, err
	}
	if err := s.persist(next); err != nil {
		return s.current, err
	}
	s.current = next
	return next, nil
}

func (s *Store) persist(doc Mining) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// Dir returns the onyx data directory backing the store.
func (s *Store) Dir() string { return s.dir }

// Path returns the location of the configuration document.
func (s *Store) Path() string { return s.path }

// SocketPath returns the daemon control socket location.
func (s *Store) SocketPath() string { return filepath.Join(s.dir, "onyxd.sock") }

// LockPath returns the daemon single-instance lock file location.
func (s *Store) LockPath() string { return filepath.Join(s.dir, "onyxd.lock") }

// PIDPath returns the daemon pid file location.
func (s *Store) PIDPath() string { return filepath.Join(s.dir, "onyxd.pid") }

// LogPath returns the daemon log file location.
func (s *Store) LogPath() string { return filepath.Join(s.dir, "onyxd.log") }

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
