package result

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesearchtools/seeker/pkg/actor"
	"github.com/codesearchtools/seeker/pkg/message"
)

func newTestActor(t *testing.T, h actor.Handler) (*actor.Actor, chan message.Envelope) {
	t.Helper()
	out := make(chan message.Envelope, 4096)
	a := actor.New("result", h, actor.SenderFunc(func(e message.Envelope) { out <- e }), 4096)
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

// TestRapidRetypeCancelsOldResults matches spec §8 scenario 2 and the
// correlation-id law: results from an older generation never reach the UI
// after a newer generation's SetCorrelation.
func TestRapidRetypeCancelsOldResults(t *testing.T) {
	h := New()
	a, out := newTestActor(t, h)

	a.Tell(message.New(MethodSetCorrelation, SetCorrelation{CorrelationID: "gen-1"}))
	a.Tell(message.New(MethodPushSearchResult, PushSearchResult{Content: "foo match", CorrelationID: "gen-1"}))

	a.Tell(message.New(MethodSetCorrelation, SetCorrelation{CorrelationID: "gen-2"}))
	a.Tell(message.New(MethodPushSearchResult, PushSearchResult{Content: "foo stale", CorrelationID: "gen-1"}))
	a.Tell(message.New(MethodPushSearchResult, PushSearchResult{Content: "bar match", CorrelationID: "gen-2"}))

	envs := drain(t, out, 200*time.Millisecond)
	var contents []string
	for _, e := range envs {
		if e.Method == MethodUIAppendResult {
			contents = append(contents, e.Payload.(UIAppendResult).Content)
		}
	}
	assert.Equal(t, []string{"foo match", "bar match"}, contents)
}

// TestResultHandlerCap matches spec §8's cap law exactly.
func TestResultHandlerCap(t *testing.T) {
	h := New()
	a, out := newTestActor(t, h)

	a.Tell(message.New(MethodSetMaxResults, SetMaxResults{Max: 3}))
	a.Tell(message.New(MethodSetCorrelation, SetCorrelation{CorrelationID: "gen"}))
	for i := 0; i < 10; i++ {
		a.Tell(message.New(MethodPushSearchResult, PushSearchResult{Content: "x", CorrelationID: "gen"}))
	}
	a.Tell(message.New(MethodCompleteSearch, CompleteSearch{CorrelationID: "gen"}))

	envs := drain(t, out, 200*time.Millisecond)
	var appended int
	var finished *SearchFinished
	for _, e := range envs {
		switch e.Method {
		case MethodUIAppendResult:
			appended++
		case MethodSearchFinished:
			f := e.Payload.(SearchFinished)
			finished = &f
		}
	}
	assert.Equal(t, 3, appended)
	require.NotNil(t, finished)
	assert.Equal(t, 3, finished.Count)
}

// TestClearResultsForwardedToUI matches spec §4.5 step 3: ClearResults,
// emitted by the owning search actor before any result of its own dispatch,
// must reach the UI as UIClearResults rather than being silently dropped.
func TestClearResultsForwardedToUI(t *testing.T) {
	h := New()
	a, out := newTestActor(t, h)

	a.Tell(message.New(MethodSetCorrelation, SetCorrelation{CorrelationID: "gen-1"}))
	a.Tell(message.WithCorrelation(MethodClearResults, nil, "gen-1"))

	envs := drain(t, out, 150*time.Millisecond)
	require.Len(t, envs, 1)
	assert.Equal(t, MethodUIClearResults, envs[0].Method)
}

// TestClearResultsFromStaleGenerationIsDropped exercises the correlation
// gate: a ClearResults tagged with a generation that is no longer current
// must not reach the UI.
func TestClearResultsFromStaleGenerationIsDropped(t *testing.T) {
	h := New()
	a, out := newTestActor(t, h)

	a.Tell(message.New(MethodSetCorrelation, SetCorrelation{CorrelationID: "gen-2"}))
	a.Tell(message.WithCorrelation(MethodClearResults, nil, "gen-1"))

	envs := drain(t, out, 150*time.Millisecond)
	assert.Empty(t, envs)
}

func TestCompleteSearchEmittedExactlyOnce(t *testing.T) {
	h := New()
	a, out := newTestActor(t, h)

	a.Tell(message.New(MethodSetCorrelation, SetCorrelation{CorrelationID: "gen"}))
	a.Tell(message.New(MethodCompleteSearch, CompleteSearch{CorrelationID: "gen"}))
	a.Tell(message.New(MethodCompleteSearch, CompleteSearch{CorrelationID: "gen"}))

	envs := drain(t, out, 150*time.Millisecond)
	var finishes int
	for _, e := range envs {
		if e.Method == MethodSearchFinished {
			finishes++
		}
	}
	assert.Equal(t, 1, finishes)
}
