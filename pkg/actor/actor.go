// Package actor implements the core runtime primitive: an inbox, a handler,
// an outbound sender into a shared routing fabric, and a task that runs
// until shutdown. Actors never share mutable state through references;
// state enters only as envelopes (spec §4.1).
package actor

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/codesearchtools/seeker/pkg/message"
)

// Handler processes one envelope at a time. Implementations must not block
// the calling goroutine for unbounded time; long work should be spawned onto
// a worker pool carrying its own cancellation token.
type Handler interface {
	OnMessage(ctx context.Context, env message.Envelope, ctrl *Controller)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, env message.Envelope, ctrl *Controller)

// OnMessage implements Handler.
func (f HandlerFunc) OnMessage(ctx context.Context, env message.Envelope, ctrl *Controller) {
	f(ctx, env, ctrl)
}

// Sender delivers an envelope into the shared routing fabric. Implementations
// must be safe for concurrent use; they must not capture actor-private state.
type Sender interface {
	Send(env message.Envelope)
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc func(env message.Envelope)

// Send implements Sender.
func (f SenderFunc) Send(env message.Envelope) { f(env) }

// Controller is the handle a Handler uses to talk back to the bus and to
// request its own shutdown.
type Controller struct {
	name   string
	out    Sender
	cancel context.CancelFunc
}

// Send is fire-and-forget: it enqueues an envelope into the routing fabric.
func (c *Controller) Send(method string, payload any) {
	c.out.Send(message.New(method, payload))
}

// SendCorrelated is Send but tags the envelope with a correlation id.
func (c *Controller) SendCorrelated(method string, payload any, correlationID string) {
	c.out.Send(message.WithCorrelation(method, payload, correlationID))
}

// Shutdown sets the flag the inbox loop checks on its next iteration.
func (c *Controller) Shutdown() {
	c.cancel()
}

// Name returns the owning actor's name, for logging.
func (c *Controller) Name() string { return c.name }

// Actor is an inbox, a handler, and a task running until shutdown.
type Actor struct {
	name    string
	inbox   chan message.Envelope
	handler Handler
	ctrl    *Controller
	done    chan struct{}
}

// New constructs an actor with the given name, handler, and outbound sender.
// queueDepth is the buffer depth of the inbox channel; spec §3 describes
// inboxes as unbounded single-producer/single-consumer, which a fixed
// buffer of generous depth approximates closely enough for a single-process
// tool. The buffer does not grow: once it is full, Tell blocks.
func New(name string, handler Handler, out Sender, queueDepth int) *Actor {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Actor{
		name:    name,
		inbox:   make(chan message.Envelope, queueDepth),
		handler: handler,
		done:    make(chan struct{}),
	}
	a.ctrl = &Controller{name: name, out: out, cancel: cancel}
	go a.loop(ctx)
	return a
}

// loop processes envelopes strictly sequentially: a handler's execution is
// never interleaved with another envelope addressed to the same actor.
func (a *Actor) loop(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-a.inbox:
			if !ok {
				return
			}
			a.dispatch(ctx, env)
		}
	}
}

// dispatch absorbs (logs) handler failures so the loop continues; handlers
// that want to surface an error emit an error envelope instead of panicking.
func (a *Actor) dispatch(ctx context.Context, env message.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("actor", a.name).WithField("method", env.Method).
				Errorf("handler panic: %v", r)
		}
	}()
	a.handler.OnMessage(ctx, env, a.ctrl)
}

// Tell delivers an envelope to this actor's inbox. It returns at once while
// the inbox holds fewer than the queue depth configured at construction; a
// full inbox indicates a starved actor, is logged, and blocks the sender
// until there is room.
func (a *Actor) Tell(env message.Envelope) {
	select {
	case a.inbox <- env:
	default:
		log.WithField("actor", a.name).Warn("inbox full, dropping oldest delivery path is not taken; blocking send")
		a.inbox <- env
	}
}

// Name returns the actor's name.
func (a *Actor) Name() string { return a.name }

// Shutdown requests the actor stop processing and waits for the inbox loop
// to exit.
func (a *Actor) Shutdown() {
	a.ctrl.Shutdown()
	<-a.done
}

// String implements fmt.Stringer for diagnostics.
func (a *Actor) String() string {
	return fmt.Sprintf("actor(%s)", a.name)
}
