package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMissingFile(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Empty(t, store.DBPath())
}

func TestStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := OpenStore(path)
	require.NoError(t, err)
	assert.Empty(t, store.DBPath())
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	store, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetDBPath("/data/app.db"))
	assert.Equal(t, "/data/app.db", store.DBPath())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/app.db", reopened.DBPath())
}

func TestStoreWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dbPath":"/a.db"}`), 0o644))

	store, err := OpenStore(path)
	require.NoError(t, err)
	require.Equal(t, "/a.db", store.DBPath())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(dbPath string) {
			mu.Lock()
			seen = append(seen, dbPath)
			mu.Unlock()
		})
	}()

	// Give the watcher time to register before editing the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"dbPath":"/b.db"}`), 0o644))

	// Truncate-then-write may report an empty path first.
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "/b.db"
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "/b.db", store.DBPath())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
