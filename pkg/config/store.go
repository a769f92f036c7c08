package config

import (
	"log/slog"
	"sync"

	"github.com/spf13/afero"
)

// Store holds the live configuration. Reads take a full copy and writes
// replace the whole value, both under the same mutex, so no reader ever sees
// fields from two different saves.
type Store struct {
	mu      sync.Mutex
	current Config
	fs      afero.Fs
	path    string
	logger  *slog.Logger
}

// NewStore creates a store holding initial and persisting to path on fsys.
func NewStore(fsys afero.Fs, path string, initial Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		current: initial,
		fs:      fsys,
		path:    path,
		logger:  logger,
	}
}

// Open loads the configuration at path (falling back to defaults) and wraps
// it in a Store.
func Open(fsys afero.Fs, path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := LoadStrict(fsys, path)
	if err != nil {
		logger.Info("using default configuration", "path", path, "reason", err)
	} else {
		logger.Info("configuration loaded", "path", path)
	}
	return NewStore(fsys, path, cfg, logger)
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Replace swaps in cfg and persists it. The file is written while the lock
// is held so the on-disk order of saves matches the in-memory order. The new
// value stays in effect even if persisting fails.
func (s *Store) Replace(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = cfg
	return Save(s.fs, s.path, cfg)
}

// Persist writes the current configuration, creating the file if needed.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Save(s.fs, s.path, s.current)
}

// reload re-reads the file and swaps it in without persisting. A file that
// cannot be parsed (for example half-written by an editor) keeps the
// previous configuration.
func (s *Store) reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := LoadStrict(s.fs, s.path)
	if err != nil {
		s.logger.Warn("config reload failed, keeping previous configuration", "path", s.path, "error", err)
		return
	}
	if cfg == s.current {
		return
	}
	s.current = cfg
	s.logger.Info("configuration reloaded", "path", s.path)
}
