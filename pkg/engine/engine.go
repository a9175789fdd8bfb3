// Package engine wires the actor graph together: one actor per pkg/ package,
// routed through a single bus.Dispatcher, the way cli/main.go and
// cli/cmd/root.go assemble the linkerd CLI's command tree and shared flags
// into one runnable process. Nothing here decides search semantics; it only
// constructs and connects the pieces spec.md §2 and §9 name.
package engine

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/backend"
	"github.com/codesearchtools/seeker/pkg/bus"
	"github.com/codesearchtools/seeker/pkg/clip"
	"github.com/codesearchtools/seeker/pkg/dispatch"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/pathsearch"
	"github.com/codesearchtools/seeker/pkg/result"
	"github.com/codesearchtools/seeker/pkg/search"
	"github.com/codesearchtools/seeker/pkg/symbol"
	"github.com/codesearchtools/seeker/pkg/tui"
	"github.com/codesearchtools/seeker/pkg/watch"
)

// queueDepth is the inbox buffer every actor in the graph is constructed
// with; spec §3 describes inboxes as unbounded, and a few thousand pending
// envelopes is deep enough that a starved actor logs a warning long before a
// real session would ever fill it.
const queueDepth = 4096

// Options configures one engine instance. RgPath/AgPath let callers override
// the binaries Probe/Select shell out to (tests point these at a name that
// can never resolve, to force the native fallback deterministically).
type Options struct {
	Root       string
	RgPath     string
	AgPath     string
	NativeOpts backend.NativeOptions
	Clipboard  clip.Adapter
}

// Engine owns the constructed actor graph plus the two standalone
// background tasks (the filesystem watcher and the TUI) that are not
// actor.Handlers themselves, since pkg/actor has no "Start" lifecycle hook
// beyond its own inbox loop.
type Engine struct {
	Dispatcher *dispatch.Dispatcher
	Stats      *symbol.Stats
	TUI        *tui.TUI

	routing *bus.Dispatcher
	watcher *watch.Watcher

	literalRegex *actor.Actor
	symbolIndex  *actor.Actor
	pathSearch   *actor.Actor
	resultActor  *actor.Actor
}

// New constructs the full actor graph. It probes backend availability once,
// at startup, per spec §4.3 ("probed once, cached for the process lifetime").
func New(ctx context.Context, opts Options) *Engine {
	if opts.Clipboard == nil {
		opts.Clipboard = clip.OS{}
	}
	if opts.NativeOpts.Extensions == nil {
		opts.NativeOpts = backend.DefaultNativeOptions()
	}

	routing := bus.NewDispatcher()
	router := dispatch.New(routing, opts.Root)

	stats := &symbol.Stats{}
	cache := symbol.NewCache()

	t := tui.New(router, opts.Clipboard, stats)
	routing.Register("tui", t.Deliver)

	resultActor := actor.New(dispatch.ActorResult, result.New(),
		actor.SenderFunc(func(env message.Envelope) { routing.Route("tui", env) }), queueDepth)
	routing.Register(dispatch.ActorResult, resultActor.Tell)

	toResult := actor.SenderFunc(func(env message.Envelope) { routing.Route(dispatch.ActorResult, env) })

	symbolIndex := actor.New(dispatch.ActorSymbol, symbol.NewIndex(), toResult, queueDepth)
	routing.Register(dispatch.ActorSymbol, symbolIndex.Tell)

	pathSearch := actor.New(dispatch.ActorFilepath, pathsearch.New(ctx), toResult, queueDepth)
	routing.Register(dispatch.ActorFilepath, pathSearch.Tell)

	avail := backend.Probe(ctx, opts.RgPath, opts.AgPath)
	nativeOpts := opts.NativeOpts
	rgPath, agPath := opts.RgPath, opts.AgPath
	selector := func() backend.Backend { return backend.Select(avail, rgPath, agPath, nativeOpts) }
	literalRegex := actor.New(dispatch.ActorLiteralRegex, search.New(ctx, selector), toResult, queueDepth)
	routing.Register(dispatch.ActorLiteralRegex, literalRegex.Tell)

	w := watch.New(opts.Root, cache, stats, actor.SenderFunc(func(env message.Envelope) { symbolIndex.Tell(env) }))

	return &Engine{
		Dispatcher:   router,
		Stats:        stats,
		TUI:          t,
		routing:      routing,
		watcher:      w,
		literalRegex: literalRegex,
		symbolIndex:  symbolIndex,
		pathSearch:   pathSearch,
		resultActor:  resultActor,
	}
}

// Run starts the filesystem watcher in the background and blocks on the
// TUI's event loop until ctx is cancelled or the user quits. It is the one
// call a CLI command in interactive mode needs to make.
func (e *Engine) Run(ctx context.Context) error {
	go func() {
		if err := e.watcher.Run(ctx); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("engine: watcher stopped")
		}
	}()
	return e.TUI.Run(ctx)
}

// Shutdown tears down every actor in the graph. Callers that run the engine
// in one-shot (non-TUI) mode construct it, call RunOnce, then call Shutdown
// instead of Run.
func (e *Engine) Shutdown() {
	e.literalRegex.Shutdown()
	e.symbolIndex.Shutdown()
	e.pathSearch.Shutdown()
	e.resultActor.Shutdown()
}

// RunOnce dispatches a single query and waits for its generation's
// SearchFinished, bypassing the TUI entirely: the non-interactive mode
// examples/search_comparison.rs and examples/smart_search.rs demonstrate in
// original_source/, carried forward by SPEC_FULL as the CLI's non-`--tui`
// path. It temporarily substitutes the routing table's "tui" entry with its
// own collector and restores the real TUI's registration before returning,
// so a later interactive Run on the same Engine still works.
func (e *Engine) RunOnce(ctx context.Context, query string) ([]result.UIAppendResult, int, error) {
	type finished struct {
		count int
	}
	results := make([]result.UIAppendResult, 0, 64)
	done := make(chan finished, 1)

	e.routing.Register("tui", func(env message.Envelope) {
		switch env.Method {
		case result.MethodUIAppendResult:
			results = append(results, env.Payload.(result.UIAppendResult))
		case result.MethodSearchFinished:
			done <- finished{count: env.Payload.(result.SearchFinished).Count}
		}
	})
	defer e.routing.Register("tui", e.TUI.Deliver)

	e.Dispatcher.Dispatch(query)

	select {
	case f := <-done:
		return results, f.count, nil
	case <-ctx.Done():
		return results, len(results), ctx.Err()
	}
}
