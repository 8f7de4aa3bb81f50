package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// Defaults used when the constructor receives non-positive values.
const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultPerMinute    = 12
	MinimumDebounceTime = 10 * time.Millisecond
)

// Ensure SourceWatcher implements the interface.
var _ driven.SourceWatcher = (*SourceWatcher)(nil)

// SourceWatcher watches a directory tree with fsnotify.
type SourceWatcher struct {
	debounce time.Duration
	limit    rate.Limit
}

// NewSourceWatcher creates a watcher that waits debounce after the last
// change and reports at most perMinute batches per minute.
func NewSourceWatcher(debounce time.Duration, perMinute int) *SourceWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if debounce < MinimumDebounceTime {
		debounce = MinimumDebounceTime
	}
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	return &SourceWatcher{
		debounce: debounce,
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
	}
}

// Debounce returns the quiet period.
func (w *SourceWatcher) Debounce() time.Duration {
	return w.debounce
}

// Watch blocks until ctx is cancelled. A cancelled context is a normal
// stop and returns nil.
func (w *SourceWatcher) Watch(
	ctx context.Context,
	root string,
	skip func(name string) bool,
	onChange func(paths []string),
) error {
	if skip == nil {
		skip = func(string) bool { return false }
	}
	root = filepath.Clean(root)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if _, err := addTree(fsw, root, root, skip); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	b := newBatcher(w.debounce, rate.NewLimiter(w.limit, 1))
	defer b.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) || excluded(root, event.Name, skip) {
				continue
			}
			b.add(event.Name)
			if event.Has(fsnotify.Create) {
				// Files written before the new directory was watched
				// would otherwise be missed.
				found, err := addTree(fsw, root, event.Name, skip)
				if err != nil {
					logger.Debug("watch: adding %s: %v", event.Name, err)
				}
				for _, p := range found {
					b.add(p)
				}
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-b.fire():
			if paths := b.flush(); paths != nil {
				onChange(paths)
			}
		}
	}
}

// relevant drops permission-only events.
func relevant(event fsnotify.Event) bool {
	return event.Op != fsnotify.Chmod && event.Op != 0
}

// excluded reports whether any path component between root and p matches skip.
func excluded(root, p string, skip func(string) bool) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return true
	}
	if rel == "." {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if skip(part) {
			return true
		}
	}
	return false
}

// addTree watches dir and every directory below it that skip does not
// exclude. Symlinked directories are not followed. It returns the
// non-directory entries found below dir. A dir that is not a directory
// is ignored.
func addTree(fsw *fsnotify.Watcher, root, dir string, skip func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			logger.Debug("watch: %s: %v", p, err)
			return nil
		}
		if p != root && skip(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if p != dir {
				files = append(files, p)
			}
			return nil
		}
		return fsw.Add(p)
	})
	if errors.Is(err, fs.ErrNotExist) {
		// Created and removed again before we got to it.
		return nil, nil
	}
	return files, err
}

// ==================== Batching ====================

// batcher collects changed paths and decides when to release them.
type batcher struct {
	debounce time.Duration
	limiter  *rate.Limiter
	pending  map[string]struct{}
	timer    *time.Timer
	armed    bool

	// reserved is set while waiting for a rate-limit token. New events
	// do not push the release further out in that state.
	reserved bool
}

func newBatcher(debounce time.Duration, limiter *rate.Limiter) *batcher {
	return &batcher{
		debounce: debounce,
		limiter:  limiter,
		pending:  make(map[string]struct{}),
	}
}

func (b *batcher) add(p string) {
	b.pending[p] = struct{}{}
	if !b.reserved {
		b.arm(b.debounce)
	}
}

func (b *batcher) arm(d time.Duration) {
	if b.timer == nil {
		b.timer = time.NewTimer(d)
	} else {
		b.timer.Stop()
		b.timer.Reset(d)
	}
	b.armed = true
}

// fire returns the timer channel, or nil when nothing is scheduled.
func (b *batcher) fire() <-chan time.Time {
	if !b.armed {
		return nil
	}
	return b.timer.C
}

// flush is called when the timer fires. It returns nil when the batch
// was postponed by the rate limiter.
func (b *batcher) flush() []string {
	b.armed = false
	if len(b.pending) == 0 {
		b.reserved = false
		return nil
	}
	if !b.reserved {
		if delay := b.limiter.Reserve().Delay(); delay > 0 {
			logger.Debug("watch: rate limited, next redeploy in %s", delay.Round(time.Millisecond))
			b.reserved = true
			b.arm(delay)
			return nil
		}
	}
	b.reserved = false

	paths := make([]string, 0, len(b.pending))
	for p := range b.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	b.pending = make(map[string]struct{})
	return paths
}

func (b *batcher) stop() {
	if b.timer != nil {
		b.timer.Stop()
	}
}
