// Package result implements the result handler of spec §4.10: the single
// place "only the latest search's results reach the UI" is enforced, via a
// correlation-id gate, a counter, and a configurable maximum.
package result

import (
	"context"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/message"
)

// Envelope methods this actor accepts.
const (
	MethodPushSearchResult = "PushSearchResult"
	MethodClearResults     = "ClearResults"
	MethodCompleteSearch   = "CompleteSearch"
	MethodSetCorrelation   = "SetCorrelation"
	MethodSetMaxResults    = "SetMaxResults"
)

// Envelope methods this actor emits, toward the UI.
const (
	MethodUIAppendResult = "UIAppendResult"
	MethodUIClearResults = "UIClearResults"
	MethodSearchFinished = "SearchFinished"
)

// PushSearchResult is the one result payload every producer (pkg/search,
// pkg/symbol, pkg/pathsearch) builds and sends; those packages import
// pkg/result, so result stays a leaf package.
type PushSearchResult struct {
	Filename      string
	Line          uint32
	Column        uint32
	Content       string
	CorrelationID string
}

// CompleteSearch is the end-of-generation payload every producer sends.
type CompleteSearch struct {
	CorrelationID string
}

// SetCorrelation is sent by the dispatcher every time it starts a new
// generation, resetting the counter and completion flag.
type SetCorrelation struct{ CorrelationID string }

// SetMaxResults adjusts the cap.
type SetMaxResults struct{ Max int }

// UIAppendResult is forwarded to the UI for every accepted result.
type UIAppendResult struct {
	Filename string
	Line     uint32
	Column   uint32
	Content  string
}

// SearchFinished is emitted exactly once per generation, with the final
// count (possibly truncated at the cap).
type SearchFinished struct {
	Count int
}

const defaultMax = 500

// Handler is the result handler's actor.Handler. All state below is private
// to the owning actor's single-threaded inbox loop; no lock is needed.
type Handler struct {
	current   string
	count     int
	max       int
	completed bool
}

// New constructs a result handler with the default cap.
func New() *Handler {
	return &Handler{max: defaultMax}
}

// OnMessage implements actor.Handler.
func (h *Handler) OnMessage(ctx context.Context, env message.Envelope, ctrl *actor.Controller) {
	switch env.Method {
	case MethodSetCorrelation:
		p := env.Payload.(SetCorrelation)
		h.current = p.CorrelationID
		h.count = 0
		h.completed = false

	case MethodSetMaxResults:
		p := env.Payload.(SetMaxResults)
		if p.Max > 0 {
			h.max = p.Max
		}

	case MethodClearResults:
		// Carried on the envelope itself (payload is nil) rather than a
		// typed struct, matching how search.Actor/pathsearch.Actor send it.
		// The dispatcher's SetCorrelation already lands before a search
		// actor's own ClearResults (spec §4.5 step 3 follows its step 1),
		// so by the time this arrives env.CorrelationID == h.current for
		// the current generation; a stale generation's ClearResults (if one
		// ever arrived late) is dropped by the same gate as any other
		// envelope here.
		if env.CorrelationID != h.current {
			return
		}
		ctrl.Send(MethodUIClearResults, nil)

	case MethodPushSearchResult:
		p := env.Payload.(PushSearchResult)
		if p.CorrelationID != h.current || h.completed {
			return
		}
		if h.count >= h.max {
			return
		}
		h.count++
		ctrl.Send(MethodUIAppendResult, UIAppendResult{
			Filename: p.Filename,
			Line:     p.Line,
			Column:   p.Column,
			Content:  p.Content,
		})

	case MethodCompleteSearch:
		p := env.Payload.(CompleteSearch)
		if p.CorrelationID != h.current || h.completed {
			return
		}
		h.completed = true
		ctrl.Send(MethodSearchFinished, SearchFinished{Count: h.count})
	}
}
