// Package search implements the literal/regex search actor of spec §4.5: it
// owns a cancellation token and the current search parameters, cancels and
// restarts a streaming backend search on every UpdateSearchParams, and
// emits ClearResults / PushSearchResult / CompleteSearch in the order spec
// §4.5 mandates.
package search

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/backend"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/result"
)

// Envelope methods this actor accepts.
const (
	MethodUpdateSearchParams = "UpdateSearchParams"
	MethodCancel             = "Cancel"
)

// Envelope methods this actor emits.
const (
	MethodClearResults     = "ClearResults"
	MethodPushSearchResult = "PushSearchResult"
	MethodCompleteSearch   = "CompleteSearch"
)

// Mode distinguishes literal from regex dispatch; it is an alias of
// backend.Mode.
type Mode = backend.Mode

const (
	ModeLiteral = backend.ModeLiteral
	ModeRegex   = backend.ModeRegex
)

// UpdateSearchParams is the payload sent by the dispatcher on every
// keystroke routed to this actor.
type UpdateSearchParams struct {
	Query         string
	Mode          Mode
	Root          string
	CorrelationID string
}

// Selector returns the backend to use for the current search. It is called
// fresh on every dispatch, so tests can inject a fake. The engine's selector
// chooses from availability probed once at startup, so a backend that
// becomes available mid-session is not picked up.
type Selector func() backend.Backend

// Actor is the literal/regex search actor's handler.
type Actor struct {
	selector Selector

	token   *backend.Token
	cancel  context.CancelFunc
	baseCtx context.Context
}

// New constructs a search actor handler. baseCtx is cancelled on process
// shutdown, tearing down any in-flight backend search.
func New(baseCtx context.Context, selector Selector) *Actor {
	return &Actor{selector: selector, baseCtx: baseCtx}
}

// OnMessage implements actor.Handler.
func (a *Actor) OnMessage(ctx context.Context, env message.Envelope, ctrl *actor.Controller) {
	switch env.Method {
	case MethodCancel:
		a.cancelCurrent()
	case MethodUpdateSearchParams:
		params := env.Payload.(UpdateSearchParams)
		a.dispatch(ctx, params, ctrl)
	}
}

func (a *Actor) cancelCurrent() {
	if a.token != nil {
		a.token.Cancel()
	}
}

func (a *Actor) dispatch(ctx context.Context, params UpdateSearchParams, ctrl *actor.Controller) {
	// 1. Cancel the current token, tearing down any in-flight backend.
	a.cancelCurrent()

	// 2. Store new parameters (implicit in the closure below) and create a
	// fresh token.
	token := backend.NewToken(a.baseCtx)
	a.token = token

	// 3. Emit ClearResults downstream before any new PushSearchResult.
	ctrl.SendCorrelated(MethodClearResults, nil, params.CorrelationID)

	if params.Query == "" {
		// Bare sigils classify to an empty query: suppress execution but
		// still cancel prior work (already done above) and report an
		// immediate, empty completion.
		ctrl.SendCorrelated(MethodCompleteSearch, result.CompleteSearch{CorrelationID: params.CorrelationID}, params.CorrelationID)
		return
	}

	b := a.selector()
	if b == nil {
		log.Warn("search: no backend available")
		ctrl.SendCorrelated(MethodCompleteSearch, result.CompleteSearch{CorrelationID: params.CorrelationID}, params.CorrelationID)
		return
	}

	// 4. Spawn a task that streams results tagged with this generation's
	// correlation id.
	go a.run(b, params, token, ctrl)
}

func (a *Actor) run(b backend.Backend, params UpdateSearchParams, token *backend.Token, ctrl *actor.Controller) {
	onMatch := func(r backend.SearchResult) {
		ctrl.SendCorrelated(MethodPushSearchResult, result.PushSearchResult{
			Filename:      r.Filename,
			Line:          r.Line,
			Column:        r.Column,
			Content:       r.Content,
			CorrelationID: params.CorrelationID,
		}, params.CorrelationID)
	}

	var err error
	switch params.Mode {
	case ModeRegex:
		_, err = b.SearchRegex(token.Context(), params.Query, params.Root, token, onMatch)
	default:
		_, err = b.SearchLiteral(token.Context(), params.Query, params.Root, token, onMatch)
	}
	if err != nil {
		log.WithError(err).Warn("search: backend error")
	}

	// 5. CompleteSearch follows the last PushSearchResult of this
	// generation.
	ctrl.SendCorrelated(MethodCompleteSearch, result.CompleteSearch{CorrelationID: params.CorrelationID}, params.CorrelationID)
}
