package bus

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codesearchtools/seeker/pkg/message"
)

func TestIntegratorMergesAllInputsUntilClose(t *testing.T) {
	a := make(chan message.Envelope, 4)
	b := make(chan message.Envelope, 4)

	in := NewIntegrator(a, b)

	a <- message.New("a", 1)
	a <- message.New("a", 2)
	b <- message.New("b", 1)
	close(a)
	b <- message.New("b", 2)
	close(b)

	var got []message.Envelope
	deadline := time.After(time.Second)
	for len(got) < 4 {
		select {
		case e := <-in.Out():
			got = append(got, e)
		case <-deadline:
			t.Fatal("timed out waiting for integrator output")
		}
	}

	select {
	case _, ok := <-in.Out():
		assert.False(t, ok, "output should close once all inputs close and drain")
	case <-time.After(time.Second):
		t.Fatal("integrator output did not close")
	}

	methods := make([]string, len(got))
	for i, e := range got {
		methods[i] = e.Method
	}
	sort.Strings(methods)
	assert.Equal(t, []string{"a", "a", "b", "b"}, methods)
}

func TestDemultiplexerRoutesByKey(t *testing.T) {
	in := make(chan message.Envelope, 8)
	d := NewDemultiplexer(in, func(e message.Envelope) string {
		return e.Method
	})

	fooCh := d.AddReceiver("foo", 4)
	barCh := d.AddReceiver("bar", 4)

	in <- message.New("foo", "f1")
	in <- message.New("bar", "b1")
	in <- message.New("baz", "dropped") // no registered downstream
	in <- message.New("foo", "f2")
	close(in)

	var foo, bar []message.Envelope
	deadline := time.After(time.Second)
	for len(foo) < 2 || len(bar) < 1 {
		select {
		case e, ok := <-fooCh:
			if ok {
				foo = append(foo, e)
			}
		case e, ok := <-barCh:
			if ok {
				bar = append(bar, e)
			}
		case <-deadline:
			t.Fatalf("timed out: foo=%d bar=%d", len(foo), len(bar))
		}
	}
	assert.Equal(t, "f1", foo[0].Payload)
	assert.Equal(t, "f2", foo[1].Payload)
	assert.Equal(t, "b1", bar[0].Payload)
}

func TestDemultiplexerClosesDownstreamsOnInputClose(t *testing.T) {
	in := make(chan message.Envelope)
	d := NewDemultiplexer(in, func(e message.Envelope) string { return e.Method })
	ch := d.AddReceiver("k", 1)
	close(in)

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("downstream channel was not closed")
	}
}

func TestDispatcherRoutesToRegisteredTarget(t *testing.T) {
	d := NewDispatcher()
	var got message.Envelope
	var called bool
	d.Register("sink", func(e message.Envelope) {
		called = true
		got = e
	})

	d.Route("sink", message.New("hello", 42))
	assert.True(t, called)
	assert.Equal(t, "hello", got.Method)

	// unknown target is silently dropped, not a panic.
	d.Route("missing", message.New("hello", 42))

	d.Unregister("sink")
	called = false
	d.Route("sink", message.New("hello", 42))
	assert.False(t, called)
}
