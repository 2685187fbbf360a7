package daos

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory PathStore.
type memStore struct {
	mu   sync.Mutex
	path string
}

func (s *memStore) DBPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *memStore) SetDBPath(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	return nil
}

// createDBFile creates an empty SQLite database file and returns its path.
func createDBFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	client, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = client.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, client.Close())
	return path
}

// setupTestDB opens a fresh database file for a single test.
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	path := createDBFile(t, "test.db")

	db, err := openDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Client.Close() })
	return db
}

// mustExec runs statements directly against the database.
func mustExec(t *testing.T, db *Database, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := db.Client.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}
