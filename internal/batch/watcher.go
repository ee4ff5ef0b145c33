package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ResultsSuffix is appended to a corpus file's base name to name its output.
const ResultsSuffix = ".results.json"

// FileHandler processes one corpus file found by the Watcher.
type FileHandler func(ctx context.Context, path string) error

// Watcher runs a FileHandler for every CSV or XLSX file created or rewritten
// in a directory. Files are handled one at a time, in the order they settle.
type Watcher struct {
	dir      string
	handle   FileHandler
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a Watcher. A change is handled once the file has been
// quiet for debounce.
func NewWatcher(dir string, handle FileHandler, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		handle:   handle,
		debounce: debounce,
		pending:  make(map[string]time.Time),
	}
}

// Watches reports whether path is a corpus file the Watcher reacts to.
func Watches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ResultsSuffix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// OutputPath returns where the results of the corpus at path are written.
func OutputPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ResultsSuffix
}

// Start watches the directory until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logrus.Infof("batch.Watcher: watching %s", w.dir)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("batch.Watcher: stopped")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !Watches(ev.Name) {
				continue
			}
			w.mu.Lock()
			w.pending[ev.Name] = time.Now()
			w.mu.Unlock()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logrus.Warnf("batch.Watcher: %v", err)
		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if ctx.Err() != nil {
					return nil
				}
				if err := w.handle(ctx, path); err != nil {
					logrus.Errorf("batch.Watcher: %s: %v", path, err)
				}
			}
		}
	}
}

// settled removes and returns, oldest first, the files quiet since debounce.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return w.pending[ready[i]].Before(w.pending[ready[j]])
	})
	for _, path := range ready {
		delete(w.pending, path)
	}
	return ready
}
