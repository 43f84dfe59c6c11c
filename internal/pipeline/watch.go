package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/colereed/showrunner/internal/storage"
)

// Watcher scans the transcripts directory on an interval and feeds new files
// through the coordinator one at a time. A plain scan loop is deliberate:
// transcripts are dropped by hand a few times a week, and a scan also picks
// up files that existed before the watcher started.
type Watcher struct {
	coord    *Coordinator
	dir      string
	interval time.Duration
	log      *slog.Logger

	// onComplete receives each finished episode's trigger state, typically to
	// start a publish poller in the background.
	onComplete func(*storage.TriggerState)
}

// NewWatcher creates a watcher over dir. onComplete may be nil.
func NewWatcher(coord *Coordinator, dir string, interval time.Duration, onComplete func(*storage.TriggerState), log *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Watcher{coord: coord, dir: dir, interval: interval, onComplete: onComplete, log: log}
}

// Run scans until the context is cancelled. The first scan happens
// immediately, not after the first interval.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info("watching for transcripts", "dir", w.dir, "interval", w.interval.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.scan(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn("transcript scan failed", "error", err)
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || !w.candidate(entry.Name()) {
			continue
		}

		seen, err := w.coord.Processed().Contains(entry.Name())
		if err != nil {
			w.log.Warn("processed lookup failed", "file", entry.Name(), "error", err)
			continue
		}
		if seen {
			continue
		}

		// Strictly sequential: the next transcript waits until this one's
		// bundle is written or its run resolves otherwise.
		state, err := w.coord.Run(ctx, filepath.Join(w.dir, entry.Name()))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.log.Error("transcript processing failed", "file", entry.Name(), "error", err)
			continue
		}
		if w.onComplete != nil {
			w.onComplete(state)
		}
	}
}

// candidate filters scan entries down to transcript files. Hidden files and
// underscore-prefixed scratch files are skipped.
func (w *Watcher) candidate(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".md"
}
