package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// KeyDBPath is the config file key holding the active database path.
const KeyDBPath = "dbPath"

// Store persists the active database path in a small JSON file.
// A missing or unreadable file means no database has been selected yet.
type Store struct {
	mu   sync.RWMutex
	v    *viper.Viper
	path string
}

// OpenStore reads the config file at path. The file does not need to exist.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload replaces the in-memory config with the file contents.
// Only filesystem errors other than a missing file are returned; a file that
// is not valid JSON is treated as empty.
func (s *Store) reload() error {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		var parseErr viper.ConfigParseError
		switch {
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
		case errors.As(err, &parseErr):
			v = viper.New()
		default:
			return fmt.Errorf("read config: %w", err)
		}
	}

	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
	return nil
}

// Path returns the location of the config file.
func (s *Store) Path() string {
	return s.path
}

// DBPath returns the configured database path, or "" if none is set.
func (s *Store) DBPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(KeyDBPath)
}

// SetDBPath persists a new active database path.
func (s *Store) SetDBPath(dbPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure config dir: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set(KeyDBPath, dbPath)
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	s.v = v
	return nil
}

// Watch reloads the store whenever the config file changes on disk and calls
// onChange with the new database path when it differs from the previous one.
// It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, onChange func(dbPath string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory; editors often replace the file instead of writing it.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	name := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			prev := s.DBPath()
			if err := s.reload(); err != nil {
				continue
			}
			if next := s.DBPath(); next != prev && onChange != nil {
				onChange(next)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
