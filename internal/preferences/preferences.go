// Package preferences persists user display preferences to a small YAML file
// and exposes them as live values.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/utafrali/productreview/pkg/stream"
)

// file is the on-disk layout.
type file struct {
	DarkMode bool `yaml:"dark_mode"`
}

// Store holds the dark-mode flag. Writes go to disk before the live value
// changes, so observers never see a value that was not persisted.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
	dark   *stream.Value[bool]
}

// Open reads the preferences at path. A missing file yields the defaults;
// it is created on the first write.
func Open(path string, logger *slog.Logger) (*Store, error) {
	prefs, err := read(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:   path,
		logger: logger,
		dark:   stream.NewValue(prefs.DarkMode, stream.WithEqual(func(a, b bool) bool { return a == b })),
	}, nil
}

func read(path string) (file, error) {
	var prefs file
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, fmt.Errorf("read preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return prefs, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	return prefs, nil
}

// DarkMode reports the current flag.
func (s *Store) DarkMode() bool {
	return s.dark.Get()
}

// Watch streams the flag: the current value first, then each change.
func (s *Store) Watch(ctx context.Context) <-chan bool {
	return s.dark.Subscribe(ctx)
}

// SetDarkMode persists on.
func (s *Store) SetDarkMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(on)
}

// ToggleDarkMode flips the flag and returns the new value.
func (s *Store) ToggleDarkMode() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := !s.dark.Get()
	if err := s.setLocked(next); err != nil {
		return !next, err
	}
	return next, nil
}

func (s *Store) setLocked(on bool) error {
	if err := write(s.path, file{DarkMode: on}); err != nil {
		s.logger.Error("failed to save preferences",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return err
	}
	if s.dark.Set(on) {
		s.logger.Debug("dark mode changed", slog.Bool("dark_mode", on))
	}
	return nil
}

// write replaces path atomically via a temp file in the same directory.
func write(path string, prefs file) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".preferences-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp preferences: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
