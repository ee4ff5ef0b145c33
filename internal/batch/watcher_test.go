package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/batch"
)

func TestWatches(t *testing.T) {
	assert.True(t, batch.Watches("/in/docs.csv"))
	assert.True(t, batch.Watches("/in/docs.XLSX"))
	assert.False(t, batch.Watches("/in/docs.results.json"))
	assert.False(t, batch.Watches("/in/.docs.csv"))
	assert.False(t, batch.Watches("/in/notes.txt"))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "/in/docs.results.json", batch.OutputPath("/in/docs.csv"))
	assert.Equal(t, "/in/sheet.results.json", batch.OutputPath("/in/sheet.xlsx"))
}

func TestWatcher_HandlesNewFiles(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	var handled []string
	w := batch.NewWatcher(dir, func(_ context.Context, path string) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, filepath.Base(path))
		return nil
	}, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs.csv"), []byte("a,b\n1,2\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"docs.csv"}, handled)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := batch.NewWatcher(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) error { return nil }, 0)
	assert.Error(t, w.Start(context.Background()))
}
