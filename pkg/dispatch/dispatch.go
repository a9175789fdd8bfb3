// Package dispatch implements the query classifier and dispatcher of spec
// §3 and §4.11: it strips the sigil, classifies the search mode, allocates a
// fresh correlation id on every UI edit, and routes UpdateSearchParams to
// exactly the actor that owns the resulting mode, cancelling the previous
// mode's actor on a mode change.
package dispatch

import (
	"github.com/codesearchtools/seeker/pkg/backend"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/pathsearch"
	"github.com/codesearchtools/seeker/pkg/result"
	"github.com/codesearchtools/seeker/pkg/search"
	"github.com/codesearchtools/seeker/pkg/symbol"
)

// Mode is the closed 5-way search mode enum of spec §3.
type Mode int

const (
	Literal Mode = iota
	Regex
	Symbol
	Variable
	Filepath
)

// String names the mode for logs and the TUI's sigil-cycling.
func (m Mode) String() string {
	switch m {
	case Literal:
		return "literal"
	case Regex:
		return "regex"
	case Symbol:
		return "symbol"
	case Variable:
		return "variable"
	case Filepath:
		return "filepath"
	default:
		return "unknown"
	}
}

// Classify implements spec §3's 5-way mapping: a leading '#' selects Symbol,
// '$' selects Variable, '@' or '>' selects Filepath, '/' selects Regex, and
// anything else is Literal (the identity case, per spec §8's injectivity
// law). Bare sigils are treated as empty and still classify, so callers can
// suppress execution for an empty query while still classifying the mode.
func Classify(input string) (Mode, string) {
	if input == "" {
		return Literal, ""
	}
	sigil := input[0]
	rest := input[1:]
	switch sigil {
	case '#':
		return Symbol, rest
	case '$':
		return Variable, rest
	case '@', '>':
		return Filepath, rest
	case '/':
		return Regex, rest
	default:
		return Literal, input
	}
}

// SearchParams is the post-classification payload spec §3 describes.
type SearchParams struct {
	Query string
	Mode  Mode
}

// Target routes an envelope to a named actor — an indirection over
// bus.Dispatcher.Route so this package doesn't need to import pkg/bus
// directly in its public surface (keeps unit tests trivial to wire with
// plain function values).
type Target interface {
	Route(name string, env message.Envelope)
}

// Names of the actors each mode routes to, and the result handler's name,
// wired up by pkg/engine at startup.
const (
	ActorLiteralRegex = "search.literal-regex"
	ActorSymbol       = "symbol.index"
	ActorFilepath     = "pathsearch"
	ActorResult       = "result"
)

func actorForMode(m Mode) string {
	switch m {
	case Literal, Regex:
		return ActorLiteralRegex
	case Symbol:
		return ActorSymbol
	case Filepath:
		return ActorFilepath
	default:
		return "" // Variable has no owning search actor yet (see Non-goals discussion).
	}
}

// Dispatcher is the thin routing component of spec §4.11. It is driven
// directly by the TUI's single dedicated task (spec §5): there is no need to
// wrap it in its own actor, since it never blocks and the UI already owns
// the one goroutine permitted to originate these calls.
type Dispatcher struct {
	target Target
	root   string

	previousMode Mode
	hasPrevious  bool
}

// New constructs a dispatcher that routes through target, searching under
// root.
func New(target Target, root string) *Dispatcher {
	return &Dispatcher{target: target, root: root}
}

// Dispatch implements spec §4.11's five steps for one UI buffer edit.
func (d *Dispatcher) Dispatch(buffer string) SearchParams {
	mode, query := Classify(buffer)
	correlationID := message.NewCorrelationID()

	// 3. SetCorrelation to the result handler; ClearResults is emitted by
	// the owning search actor itself as step 3 of its own dispatch (spec
	// §4.5), preserving the ordering guarantee that ClearResults precedes
	// any PushSearchResult of the new generation.
	d.target.Route(ActorResult, message.New(result.MethodSetCorrelation, result.SetCorrelation{CorrelationID: correlationID}))

	// 5. On mode change, cancel the previous mode's actor first so an
	// abandoned backend search doesn't keep streaming into the new
	// generation's correlation id.
	if d.hasPrevious && d.previousMode != mode {
		if prevActor := actorForMode(d.previousMode); prevActor != "" {
			d.target.Route(prevActor, message.New(search.MethodCancel, nil))
		}
	}
	d.previousMode = mode
	d.hasPrevious = true

	// 4. Route UpdateSearchParams to exactly the actor owning this mode.
	targetActor := actorForMode(mode)
	if targetActor == "" {
		return SearchParams{Query: query, Mode: mode}
	}

	switch mode {
	case Literal, Regex:
		bMode := backend.ModeLiteral
		if mode == Regex {
			bMode = backend.ModeRegex
		}
		d.target.Route(targetActor, message.New(search.MethodUpdateSearchParams, search.UpdateSearchParams{
			Query: query, Mode: bMode, Root: d.root, CorrelationID: correlationID,
		}))
	case Symbol:
		d.target.Route(targetActor, message.New(symbol.MethodUpdateSearchParams, symbol.UpdateSearchParams{
			Query: query, Mode: "symbol", CorrelationID: correlationID,
		}))
	case Filepath:
		d.target.Route(targetActor, message.New(pathsearch.MethodUpdateSearchParams, pathsearch.UpdateSearchParams{
			Query: query, Root: d.root, CorrelationID: correlationID,
		}))
	}

	return SearchParams{Query: query, Mode: mode}
}
