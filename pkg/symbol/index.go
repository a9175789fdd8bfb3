package symbol

import (
	"context"
	"sort"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/fuzzy"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/result"
)

// Envelope methods the index actor accepts, per spec §4.7.
const (
	MethodClearSymbolIndex    = "ClearSymbolIndex"
	MethodPushSymbolIndex     = "PushSymbolIndex"
	MethodCompleteSymbolIndex = "CompleteSymbolIndex"
	MethodUpdateSearchParams  = "UpdateSearchParams"
)

// Envelope methods the index actor emits downstream.
const (
	MethodPushSearchResult = "PushSearchResult"
	MethodCompleteSearch   = "CompleteSearch"
)

// ClearSymbolIndex removes filepath's entry.
type ClearSymbolIndex struct{ Filepath string }

// PushSymbolIndex appends to (or creates) filepath's entry.
type PushSymbolIndex struct {
	Filepath string
	Line     uint32
	Column   uint32
	Name     string
	Content  string
	Kind     Kind
}

// CompleteSymbolIndex marks filepath as fully ingested.
type CompleteSymbolIndex struct{ Filepath string }

// UpdateSearchParams carries a fresh search dispatch. Mode is a string so
// this package has no dependency on pkg/dispatch; the index actor only acts
// when Mode == "symbol". CorrelationID is threaded through to the emitted
// result.PushSearchResult/CompleteSearch envelopes so the result handler's
// generation gate accepts them.
type UpdateSearchParams struct {
	Query         string
	Mode          string
	CorrelationID string
}

const symbolMode = "symbol"

// resultCap is the default cap on ranked symbol results (spec §4.7, §9 open
// question: 50).
const resultCap = 50

// pendingFile tracks a search request that arrived while filepath was
// between Clear and Complete, deferred to preserve invariant I4 (a fuzzy
// query never observes a partially populated entry for the file it's
// currently re-indexing).
type pendingFile struct {
	inflight bool
}

// Index is the symbol index actor: the filepath→symbols mapping plus the
// fuzzy matcher that answers symbol queries (spec §4.7). State is reached
// only through its inbox, per spec §4.1 — no other actor ever holds a
// reference into Index.entries.
type Index struct {
	entries map[string][]Symbol
	// ingesting tracks files that have received a Push but not yet their
	// Complete. A Clear alone does not mark a file as ingesting.
	ingesting map[string]bool
	// pendingSearch holds the most recent UpdateSearchParams received while
	// any file was mid-ingestion; re-run once every in-flight file
	// completes.
	pendingSearch *UpdateSearchParams
	cap           int
}

// NewIndex constructs an empty index actor handler.
func NewIndex() *Index {
	return &Index{
		entries:   make(map[string][]Symbol),
		ingesting: make(map[string]bool),
		cap:       resultCap,
	}
}

// OnMessage implements actor.Handler.
func (ix *Index) OnMessage(ctx context.Context, env message.Envelope, ctrl *actor.Controller) {
	switch env.Method {
	case MethodClearSymbolIndex:
		p := env.Payload.(ClearSymbolIndex)
		delete(ix.entries, p.Filepath)

	case MethodPushSymbolIndex:
		p := env.Payload.(PushSymbolIndex)
		ix.ingesting[p.Filepath] = true
		ix.entries[p.Filepath] = append(ix.entries[p.Filepath], Symbol{
			Filepath: p.Filepath,
			Line:     p.Line,
			Column:   p.Column,
			Name:     p.Name,
			Content:  p.Content,
			Kind:     p.Kind,
		})

	case MethodCompleteSymbolIndex:
		p := env.Payload.(CompleteSymbolIndex)
		delete(ix.ingesting, p.Filepath)
		if ix.pendingSearch != nil && len(ix.ingesting) == 0 {
			search := *ix.pendingSearch
			ix.pendingSearch = nil
			ix.runSearch(ctrl, search)
		}

	case MethodUpdateSearchParams:
		p := env.Payload.(UpdateSearchParams)
		if p.Mode != symbolMode {
			return
		}
		if len(ix.ingesting) > 0 {
			// Deferred until ingestion completes, preserving I4: a
			// concurrent search never observes a file between its first
			// Push and its Complete.
			ix.pendingSearch = &p
			return
		}
		ix.runSearch(ctrl, p)
	}
}

func (ix *Index) runSearch(ctrl *actor.Controller, params UpdateSearchParams) {
	if params.Query == "" {
		// A bare sigil classifies to an empty query: suppress execution
		// but still report completion, matching search.Actor.dispatch and
		// pathsearch.Actor.dispatch.
		ctrl.SendCorrelated(MethodCompleteSearch, result.CompleteSearch{CorrelationID: params.CorrelationID}, params.CorrelationID)
		return
	}

	var names []string
	var syms []Symbol
	for _, list := range ix.entries {
		for _, s := range list {
			names = append(names, s.Name)
			syms = append(syms, s)
		}
	}

	matches := fuzzy.Top(params.Query, names, ix.cap)
	for _, m := range matches {
		s := syms[m.Index]
		ctrl.SendCorrelated(MethodPushSearchResult, result.PushSearchResult{
			Filename:      s.Filepath,
			Line:          s.Line,
			Column:        s.Column,
			Content:       s.Content,
			CorrelationID: params.CorrelationID,
		}, params.CorrelationID)
	}
	ctrl.SendCorrelated(MethodCompleteSearch, result.CompleteSearch{CorrelationID: params.CorrelationID}, params.CorrelationID)
}

// Snapshot returns a defensive copy of the index, for tests and for
// --index's summary report. It is not used by any concurrent query path —
// only by callers that already know ingestion is quiescent.
func (ix *Index) Snapshot() map[string][]Symbol {
	out := make(map[string][]Symbol, len(ix.entries))
	for k, v := range ix.entries {
		cp := make([]Symbol, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// SortedFilepaths is a small helper used by --index's deterministic summary
// output.
func SortedFilepaths(m map[string][]Symbol) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
