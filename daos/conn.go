package daos

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/joe-ervin05/brick/tools"
	"github.com/otiai10/copy"
)

// PathStore persists the active database path.
type PathStore interface {
	DBPath() string
	SetDBPath(path string) error
}

// Manager owns the single live database handle.
//
// Operations hold a read lock on the handle for their whole duration; any
// replacement of the handle takes the write lock, so a reconnect never races
// an in-flight query and two handles are never open at once.
type Manager struct {
	mu    sync.RWMutex
	store PathStore
	db    *Database
}

// NewManager returns a Manager that opens whatever path store points at.
// No handle is opened until the first Acquire.
func NewManager(store PathStore) *Manager {
	return &Manager{store: store}
}

// Acquire returns the current handle, reopening it first if the configured
// path changed. The caller must call release when done with the handle.
// A missing configuration yields tools.ErrNotConfigured.
func (m *Manager) Acquire(ctx context.Context) (db *Database, release func(), err error) {
	for {
		m.mu.RLock()
		want := m.store.DBPath()
		if want == "" {
			m.mu.RUnlock()
			return nil, nil, tools.ErrNotConfigured
		}
		if m.db != nil && m.db.Path == want {
			return m.db, m.mu.RUnlock, nil
		}
		m.mu.RUnlock()

		m.mu.Lock()
		err = m.switchLocked(ctx, m.store.DBPath())
		m.mu.Unlock()
		if err != nil {
			return nil, nil, err
		}
	}
}

// DBPath returns the configured database path, or "" when none is set.
func (m *Manager) DBPath() string {
	return m.store.DBPath()
}

// Connected reports whether a handle is currently open.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db != nil
}

// switchLocked replaces the handle with one for path. Callers hold m.mu.
func (m *Manager) switchLocked(ctx context.Context, path string) error {
	if path == "" {
		m.closeLocked()
		return tools.ErrNotConfigured
	}
	if m.db != nil && m.db.Path == path {
		return nil
	}

	m.closeLocked()

	db, err := openDatabase(ctx, path)
	if err != nil {
		tools.Logger.Warn("failed to open database", "path", path, "error", err.Error())
		return err
	}

	m.db = db
	tools.OpenConnections.Set(1)
	tools.Logger.Info("connected to database", "path", path)
	return nil
}

func (m *Manager) closeLocked() {
	if m.db == nil {
		return
	}
	if err := m.db.Client.Close(); err != nil {
		tools.Logger.Warn("error closing database", "path", m.db.Path, "error", err.Error())
	}
	tools.Logger.Info("closed database", "path", m.db.Path)
	m.db = nil
	tools.OpenConnections.Set(0)
}

// Use makes path the active database and persists it. The path is only
// persisted once it has been opened successfully; on failure the previous
// configuration is left in place and reopened on the next Acquire.
func (m *Manager) Use(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return tools.InvalidRequestErr("dbPath is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.switchLocked(ctx, path); err != nil {
		return err
	}
	if err := m.store.SetDBPath(path); err != nil {
		m.closeLocked()
		return err
	}
	tools.Reconnects.Inc()
	return nil
}

// Reconnect closes the handle and reopens the configured path.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked()
	tools.Reconnects.Inc()
	return m.switchLocked(ctx, m.store.DBPath())
}

// Close releases the handle. A later Acquire reopens it.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Client.Close()
	m.db = nil
	tools.OpenConnections.Set(0)
	return err
}

// CopyAndBrick checkpoints the active database, copies it to dest, bricks
// the copy and makes it the active database. The original file is left
// unbricked. dest must not exist yet.
func (m *Manager) CopyAndBrick(ctx context.Context, dest string) error {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return tools.InvalidRequestErr("destPath is required for copy mode")
	}
	if IsRemote(dest) {
		return fmt.Errorf("%w: destination %s", tools.ErrRemoteDatabase, dest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.store.DBPath()
	if src == "" {
		return tools.ErrNotConfigured
	}
	if IsRemote(src) {
		return fmt.Errorf("%w: %s", tools.ErrRemoteDatabase, src)
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s", tools.ErrDestinationExists, dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", tools.ErrCopyFailed, err)
	}

	if err := m.switchLocked(ctx, src); err != nil {
		return err
	}

	// Fold the write-ahead log into the main file so the byte copy is complete.
	if _, err := m.db.Client.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return tools.EngineErr("checkpoint", err)
	}
	m.closeLocked()

	if err := copy.Copy(src, dest, copy.Options{Sync: true}); err != nil {
		return fmt.Errorf("%w: %v", tools.ErrCopyFailed, err)
	}

	if err := m.switchLocked(ctx, dest); err != nil {
		return fmt.Errorf("%w: open copy: %v", tools.ErrCopyFailed, err)
	}
	if err := m.db.BrickUp(ctx); err != nil {
		m.closeLocked()
		return fmt.Errorf("%w: brick copy: %v", tools.ErrCopyFailed, err)
	}
	if err := m.store.SetDBPath(dest); err != nil {
		m.closeLocked()
		return fmt.Errorf("%w: %v", tools.ErrCopyFailed, err)
	}

	tools.Reconnects.Inc()
	tools.Logger.Info("copied and bricked database", "source", src, "destination", dest)
	return nil
}
