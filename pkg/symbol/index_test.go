package symbol

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/result"
)

func newTestActor(t *testing.T, handler actor.Handler) (*actor.Actor, chan message.Envelope) {
	t.Helper()
	out := make(chan message.Envelope, 64)
	sender := actor.SenderFunc(func(env message.Envelope) { out <- env })
	a := actor.New("symbol-index", handler, sender, 64)
	t.Cleanup(a.Shutdown)
	return a, out
}

func drain(t *testing.T, out chan message.Envelope, timeout time.Duration) []message.Envelope {
	t.Helper()
	var got []message.Envelope
	deadline := time.After(timeout)
	for {
		select {
		case env := <-out:
			got = append(got, env)
		case <-deadline:
			return got
		}
	}
}

// TestSymbolReindexOnWrite matches spec §8 scenario 3.
func TestSymbolReindexOnWrite(t *testing.T) {
	ix := NewIndex()
	a, out := newTestActor(t, ix)

	a.Tell(message.New(MethodPushSymbolIndex, PushSymbolIndex{
		Filepath: "a.rs", Line: 1, Column: 1, Name: "alpha", Content: "[fn] alpha", Kind: Function,
	}))
	a.Tell(message.New(MethodCompleteSymbolIndex, CompleteSymbolIndex{Filepath: "a.rs"}))
	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{Query: "alpha", Mode: symbolMode, CorrelationID: "gen-1"}))

	results := pushedResults(drain(t, out, 200*time.Millisecond))
	require.Len(t, results, 1)
	assert.Equal(t, "a.rs", results[0].Filename)

	// Overwrite: Clear -> Push(beta) -> Complete.
	a.Tell(message.New(MethodClearSymbolIndex, ClearSymbolIndex{Filepath: "a.rs"}))
	a.Tell(message.New(MethodPushSymbolIndex, PushSymbolIndex{
		Filepath: "a.rs", Line: 1, Column: 1, Name: "beta", Content: "[fn] beta", Kind: Function,
	}))
	a.Tell(message.New(MethodCompleteSymbolIndex, CompleteSymbolIndex{Filepath: "a.rs"}))

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{Query: "alpha", Mode: symbolMode, CorrelationID: "gen-2"}))
	noneMatches := pushedResults(drain(t, out, 200*time.Millisecond))
	assert.Empty(t, noneMatches)

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{Query: "beta", Mode: symbolMode, CorrelationID: "gen-3"}))
	betaMatches := pushedResults(drain(t, out, 200*time.Millisecond))
	require.Len(t, betaMatches, 1)
}

func pushedResults(envs []message.Envelope) []result.PushSearchResult {
	var out []result.PushSearchResult
	for _, e := range envs {
		if e.Method == MethodPushSearchResult {
			out = append(out, e.Payload.(result.PushSearchResult))
		}
	}
	return out
}

// TestSearchDuringIngestionIsDeferred verifies invariant I4: a query
// arriving between a Push and the matching Complete is deferred, not served
// against a partial entry.
func TestSearchDuringIngestionIsDeferred(t *testing.T) {
	ix := NewIndex()
	a, out := newTestActor(t, ix)

	a.Tell(message.New(MethodPushSymbolIndex, PushSymbolIndex{
		Filepath: "a.rs", Line: 1, Column: 1, Name: "gamma", Content: "[fn] gamma", Kind: Function,
	}))
	// No Complete yet: index actor considers a.rs mid-ingestion.
	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{Query: "gamma", Mode: symbolMode}))

	none := drain(t, out, 100*time.Millisecond)
	assert.Empty(t, none, "search must not be served while a.rs is mid-ingestion")

	a.Tell(message.New(MethodCompleteSymbolIndex, CompleteSymbolIndex{Filepath: "a.rs"}))
	got := pushedResults(drain(t, out, 200*time.Millisecond))
	require.Len(t, got, 1)
}

// TestEmptyQuerySuppressesSymbolSearch matches spec §3/§8 scenario 5: a bare
// "#" classifies to Symbol with an empty query and suppresses dispatch, so
// it must not rank (and stream) the whole symbol table.
func TestEmptyQuerySuppressesSymbolSearch(t *testing.T) {
	ix := NewIndex()
	a, out := newTestActor(t, ix)

	a.Tell(message.New(MethodPushSymbolIndex, PushSymbolIndex{
		Filepath: "a.rs", Line: 1, Column: 1, Name: "alpha", Content: "[fn] alpha", Kind: Function,
	}))
	a.Tell(message.New(MethodCompleteSymbolIndex, CompleteSymbolIndex{Filepath: "a.rs"}))

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{Query: "", Mode: symbolMode, CorrelationID: "gen-empty"}))

	envs := drain(t, out, 150*time.Millisecond)
	require.Len(t, envs, 1)
	assert.Equal(t, MethodCompleteSearch, envs[0].Method)
}

func TestExtractReturnsEmptyForUnsupportedExtension(t *testing.T) {
	symbols, err := Extract(context.Background(), "foo.unknown", ".unknown", []byte("whatever"))
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestExtractIsDeterministic(t *testing.T) {
	src := []byte("func Foo() {}\nfunc Bar() {}\n")
	a1, err := Extract(context.Background(), "x.go", ".go", src)
	require.NoError(t, err)
	a2, err := Extract(context.Background(), "x.go", ".go", src)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
}
