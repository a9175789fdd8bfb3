// Package watch implements the filesystem watcher that keeps the symbol
// index current: every create or write of a symbol-supported file resolves
// into a Clear→Push*→Complete ingestion sequence sent to the symbol index
// actor, with a short per-file debounce collapsing an editor's burst of
// writes into one re-extraction, and directory events themselves carrying no
// symbol content. Grounded directly on
// pkg/credswatcher/creds_watcher.go's fsnotify select-loop, generalized from
// one watched path to a recursive tree and from a single on/off signal to a
// full ingestion pipeline.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/ignore"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/symbol"
)

// DefaultDebounce collapses a burst of writes to the same file into a single
// re-extraction; 500 ms stands in for the watcher's polling interval (see
// DESIGN.md, pkg/watch).
const DefaultDebounce = 500 * time.Millisecond

// Watcher recursively watches a root directory, feeding every relevant file
// change into the symbol index actor's ingestion protocol.
type Watcher struct {
	root     string
	debounce time.Duration
	cache    *symbol.Cache
	stats    *symbol.Stats
	index    actor.Sender

	mu     sync.Mutex
	timers map[string]*time.Timer
	ig     *ignore.Matcher
}

// New constructs a Watcher rooted at root. index is the Sender the symbol
// index actor was constructed with; ingestion envelopes are pushed there
// directly rather than through the watcher's own inbox, since the watcher
// has no inbound envelopes of its own to serialize against.
func New(root string, cache *symbol.Cache, stats *symbol.Stats, index actor.Sender) *Watcher {
	return &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		cache:    cache,
		stats:    stats,
		index:    index,
		timers:   make(map[string]*time.Timer),
		ig:       ignore.New(root),
	}
}

// Run performs an initial full ingestion pass, then watches until ctx is
// cancelled or the underlying fsnotify watcher reports a fatal error.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}
	w.initialScan(ctx)

LOOP:
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				break LOOP
			}
			w.handleEvent(ctx, fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				break LOOP
			}
			log.WithError(err).Warn("watch: fsnotify error")
		case <-ctx.Done():
			break LOOP
		}
	}

	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return ctx.Err()
}

// addRecursive registers root and every non-ignored subdirectory with fsw.
// fsnotify has no native recursive mode, so each directory is added
// individually; newly created directories are picked up in handleEvent.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}
		if rel != "." && w.ig.Skip(rel, true) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			log.WithError(err).WithField("dir", path).Warn("watch: failed to add directory")
		}
		return nil
	})
}

// ScanOnce runs the same full-tree ingestion pass Run performs before
// starting its fsnotify loop, without ever starting that loop. Used by
// --index's one-shot summary build (a supplemented feature grounded on
// original_source/src/index_manager.rs and examples/search_comparison.rs's
// non-interactive mode), which needs the index populated once and then the
// process to exit rather than keep watching.
func (w *Watcher) ScanOnce(ctx context.Context) {
	w.initialScan(ctx)
}

// initialScan ingests every symbol-supported file under root once, before
// the watch loop starts, so the index is populated even for files that never
// change again.
func (w *Watcher) initialScan(ctx context.Context) {
	_ = filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if info.IsDir() {
			if w.ig.Skip(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.ig.Skip(rel, false) {
			return nil
		}
		w.ingest(ctx, path)
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.cancelPending(event.Name)
		w.removePath(event.Name)
		return
	}

	info, statErr := os.Stat(event.Name)
	isDir := statErr == nil && info.IsDir()

	if isDir {
		if event.Op&fsnotify.Create != 0 && !w.ig.Skip(rel, true) {
			_ = w.addRecursive(fsw, event.Name)
		}
		return // directory events carry no symbol content of their own.
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if w.ig.Skip(rel, false) {
		return
	}
	w.scheduleIngest(ctx, event.Name)
}

func (w *Watcher) scheduleIngest(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

// ingest re-extracts path's symbols and pushes the Clear→Push*→Complete
// sequence the index actor requires (spec §4.7/I4). A read or extraction
// error clears the previous entry instead, so stale symbols never survive a
// re-extraction that fails.
func (w *Watcher) ingest(ctx context.Context, path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	ext := filepath.Ext(path)
	if !symbol.Supported(ext) {
		w.stats.IncSkipped()
		return
	}

	source, err := os.ReadFile(path)
	if err != nil {
		w.stats.IncErrored(err)
		w.removePath(path)
		return
	}

	syms, err := w.cache.ExtractCached(ctx, rel, ext, source)
	if err != nil {
		w.stats.IncErrored(err)
		w.removePath(path)
		return
	}

	w.index.Send(message.New(symbol.MethodClearSymbolIndex, symbol.ClearSymbolIndex{Filepath: rel}))
	for _, s := range syms {
		w.index.Send(message.New(symbol.MethodPushSymbolIndex, symbol.PushSymbolIndex{
			Filepath: s.Filepath,
			Line:     s.Line,
			Column:   s.Column,
			Name:     s.Name,
			Content:  s.Content,
			Kind:     s.Kind,
		}))
	}
	w.index.Send(message.New(symbol.MethodCompleteSymbolIndex, symbol.CompleteSymbolIndex{Filepath: rel}))
	w.stats.IncIndexed(len(syms))
}

// removePath clears path's cache entry and drops its index entry. No
// CompleteSymbolIndex is sent: a bare Clear never sets the ingesting flag,
// so there is nothing for a Complete to un-set.
func (w *Watcher) removePath(path string) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	w.cache.Clear(rel)
	w.index.Send(message.New(symbol.MethodClearSymbolIndex, symbol.ClearSymbolIndex{Filepath: rel}))
}
