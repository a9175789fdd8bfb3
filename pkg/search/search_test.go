package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/backend"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/result"
)

// fakeBackend streams a fixed set of results and blocks until its token is
// cancelled or the caller stops waiting, so tests can exercise both the
// happy streaming path and cancel-on-restart ordering.
type fakeBackend struct {
	results []backend.SearchResult
	block   bool
	started chan struct{}
}

func (f *fakeBackend) Descriptor() backend.Descriptor { return backend.Native }

func (f *fakeBackend) SearchLiteral(ctx context.Context, query, root string, token *backend.Token, onMatch backend.OnMatch) (int, error) {
	if f.started != nil {
		close(f.started)
	}
	n := 0
	for _, r := range f.results {
		if token.IsCancelled() {
			return n, nil
		}
		onMatch(r)
		n++
	}
	if f.block {
		<-token.Done()
	}
	return n, nil
}

func (f *fakeBackend) SearchRegex(ctx context.Context, query, root string, token *backend.Token, onMatch backend.OnMatch) (int, error) {
	return f.SearchLiteral(ctx, query, root, token, onMatch)
}

func newTestActor(t *testing.T, sel Selector) (*actor.Actor, chan message.Envelope) {
	t.Helper()
	out := make(chan message.Envelope, 256)
	h := New(context.Background(), sel)
	a := actor.New("search", h, actor.SenderFunc(func(e message.Envelope) { out <- e }), 256)
	t.Cleanup(a.Shutdown)
	return a, out
}

func drain(t *testing.T, out chan message.Envelope, timeout time.Duration) []message.Envelope {
	t.Helper()
	var got []message.Envelope
	deadline := time.After(timeout)
	for {
		select {
		case e := <-out:
			got = append(got, e)
		case <-deadline:
			return got
		}
	}
}

func TestSearchActorEmitsClearPushCompleteInOrder(t *testing.T) {
	fb := &fakeBackend{results: []backend.SearchResult{
		{Filename: "a.go", Line: 1, Column: 0, Content: "hello"},
		{Filename: "b.go", Line: 2, Column: 3, Content: "hello again"},
	}}
	a, out := newTestActor(t, func() backend.Backend { return fb })

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{
		Query: "hello", Mode: ModeLiteral, Root: ".", CorrelationID: "gen-1",
	}))

	envs := drain(t, out, 300*time.Millisecond)
	require.Len(t, envs, 4)
	assert.Equal(t, MethodClearResults, envs[0].Method)
	assert.Equal(t, MethodPushSearchResult, envs[1].Method)
	assert.Equal(t, MethodPushSearchResult, envs[2].Method)
	assert.Equal(t, MethodCompleteSearch, envs[3].Method)
	for _, e := range envs {
		assert.Equal(t, "gen-1", e.CorrelationID)
	}
}

func TestEmptyQuerySuppressesExecutionButStillCompletes(t *testing.T) {
	fb := &fakeBackend{results: []backend.SearchResult{{Filename: "a.go", Line: 1}}}
	a, out := newTestActor(t, func() backend.Backend { return fb })

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{
		Query: "", Mode: ModeLiteral, Root: ".", CorrelationID: "gen-empty",
	}))

	envs := drain(t, out, 150*time.Millisecond)
	require.Len(t, envs, 2)
	assert.Equal(t, MethodClearResults, envs[0].Method)
	assert.Equal(t, MethodCompleteSearch, envs[1].Method)
}

func TestNilBackendStillReportsCompletion(t *testing.T) {
	a, out := newTestActor(t, func() backend.Backend { return nil })

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{
		Query: "x", Mode: ModeLiteral, Root: ".", CorrelationID: "gen-nb",
	}))

	envs := drain(t, out, 150*time.Millisecond)
	require.Len(t, envs, 2)
	assert.Equal(t, MethodClearResults, envs[0].Method)
	assert.Equal(t, MethodCompleteSearch, envs[1].Method)
}

// TestOverlappingDispatchCancelsPriorGeneration matches spec §8 scenario 2:
// a second UpdateSearchParams cancels the first generation's in-flight
// backend; the result handler (not under test here) is what filters stale
// PushSearchResult envelopes by correlation id, but this test asserts the
// search actor itself tears down the older backend invocation.
func TestOverlappingDispatchCancelsPriorGeneration(t *testing.T) {
	started1 := make(chan struct{})
	fb1 := &fakeBackend{block: true, started: started1}
	fb2 := &fakeBackend{results: []backend.SearchResult{{Filename: "b.go", Line: 1, Content: "bar"}}}

	calls := 0
	sel := func() backend.Backend {
		calls++
		if calls == 1 {
			return fb1
		}
		return fb2
	}
	a, out := newTestActor(t, sel)

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{
		Query: "foo", Mode: ModeLiteral, Root: ".", CorrelationID: "gen-1",
	}))
	select {
	case <-started1:
	case <-time.After(time.Second):
		t.Fatal("first search never started")
	}

	a.Tell(message.New(MethodUpdateSearchParams, UpdateSearchParams{
		Query: "bar", Mode: ModeLiteral, Root: ".", CorrelationID: "gen-2",
	}))

	envs := drain(t, out, 300*time.Millisecond)
	var gen2Results []string
	var gen1Completed bool
	for _, e := range envs {
		if e.Method == MethodPushSearchResult {
			assert.Equal(t, "gen-2", e.CorrelationID, "gen-1 produced no matches before being cancelled")
			gen2Results = append(gen2Results, e.Payload.(result.PushSearchResult).Content)
		}
		// fb1 blocks until its token is cancelled, so gen-1 only completes
		// if the second dispatch tore it down.
		if e.Method == MethodCompleteSearch && e.CorrelationID == "gen-1" {
			gen1Completed = true
		}
	}
	assert.Equal(t, []string{"bar"}, gen2Results)
	assert.True(t, gen1Completed, "gen-1's blocked backend was not cancelled")
}
