// Package pathsearch implements the path-fuzzy search actor of spec §4.9:
// walk the project directory honouring ignore rules, rank paths against the
// post-sigil query with the shared fuzzy matcher, and stream the top N as
// PushSearchResult envelopes tagged [FILE] or [DIR].
package pathsearch

import (
	"context"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/backend"
	"github.com/codesearchtools/seeker/pkg/fuzzy"
	"github.com/codesearchtools/seeker/pkg/ignore"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/result"
)

// Envelope methods this actor accepts/emits.
const (
	MethodUpdateSearchParams = "UpdateSearchParams"
	MethodCancel             = "Cancel"
	MethodClearResults       = "ClearResults"
	MethodPushSearchResult   = "PushSearchResult"
	MethodCompleteSearch     = "CompleteSearch"
)

// resultCap is the path-fuzzy actor's cap, independently configurable from
// the symbol actor's per spec §4.9/§9; 50 is used as the shared default.
const resultCap = 50

// UpdateSearchParams is the payload this actor is dispatched with.
type UpdateSearchParams struct {
	Query         string
	Root          string
	CorrelationID string
}

// entry is one walked path, kept alongside whether it is a directory.
type entry struct {
	path  string
	isDir bool
}

// Actor is the path-fuzzy search actor's handler. Owns only a cancellation
// token; it re-walks the tree on every dispatch rather than caching it,
// trading some CPU for never needing cache-invalidation logic of its own
// (the symbol index actor already owns that complexity for content).
type Actor struct {
	baseCtx context.Context
	cap     int
	token   *backend.Token
}

// New constructs a path-fuzzy search actor handler.
func New(baseCtx context.Context) *Actor {
	return &Actor{baseCtx: baseCtx, cap: resultCap}
}

// OnMessage implements actor.Handler.
func (a *Actor) OnMessage(ctx context.Context, env message.Envelope, ctrl *actor.Controller) {
	switch env.Method {
	case MethodCancel:
		if a.token != nil {
			a.token.Cancel()
		}
	case MethodUpdateSearchParams:
		p := env.Payload.(UpdateSearchParams)
		a.dispatch(p, ctrl)
	}
}

func (a *Actor) dispatch(p UpdateSearchParams, ctrl *actor.Controller) {
	if a.token != nil {
		a.token.Cancel()
	}
	token := backend.NewToken(a.baseCtx)
	a.token = token

	ctrl.SendCorrelated(MethodClearResults, nil, p.CorrelationID)

	if p.Query == "" {
		ctrl.SendCorrelated(MethodCompleteSearch, result.CompleteSearch{CorrelationID: p.CorrelationID}, p.CorrelationID)
		return
	}

	go a.run(p, token, ctrl)
}

func (a *Actor) run(p UpdateSearchParams, token *backend.Token, ctrl *actor.Controller) {
	entries := walk(p.Root, token)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.path
	}

	matches := fuzzy.Top(p.Query, names, a.cap)
	for _, m := range matches {
		if token.IsCancelled() {
			break
		}
		e := entries[m.Index]
		tag := "[FILE]"
		if e.isDir {
			tag = "[DIR]"
		}
		ctrl.SendCorrelated(MethodPushSearchResult, result.PushSearchResult{
			Filename:      e.path,
			Content:       tag + " " + e.path,
			CorrelationID: p.CorrelationID,
		}, p.CorrelationID)
	}
	ctrl.SendCorrelated(MethodCompleteSearch, result.CompleteSearch{CorrelationID: p.CorrelationID}, p.CorrelationID)
}

// walk collects both files and directories under root, honouring ignore
// rules, the way spec §4.9 requires ("Results include both files and
// directories; directories are ranked equivalently").
func walk(root string, token *backend.Token) []entry {
	ig := ignore.New(root)
	var entries []entry
	files := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if token.IsCancelled() {
			return filepath.SkipAll
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if ig.Skip(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		entries = append(entries, entry{path: rel, isDir: info.IsDir()})
		files++
		if files%100 == 0 && token.IsCancelled() {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		log.WithError(err).Warn("pathsearch: walk error")
	}
	return entries
}
