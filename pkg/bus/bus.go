// Package bus provides the channel integrator and demultiplexer described in
// spec §4.2, plus a small routing-table Dispatcher used to address actors by
// name. These utilities eliminate ad-hoc fan-in/fan-out code in higher
// layers, the way the teacher merges a result channel and a render ticker in
// cli/cmd/top.go's renderTable into one select loop, generalized here to an
// arbitrary number of inputs and outputs.
package bus

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/codesearchtools/seeker/pkg/message"
)

// Integrator merges every message from every input receiver into one output
// channel, in FIFO-per-input order; cross-input order is non-deterministic.
// When all inputs close and their queued items drain, the output closes.
type Integrator struct {
	out chan message.Envelope
	wg  sync.WaitGroup
}

// NewIntegrator starts pumping every input into a freshly created output.
func NewIntegrator(inputs ...<-chan message.Envelope) *Integrator {
	in := &Integrator{out: make(chan message.Envelope)}
	in.wg.Add(len(inputs))
	for _, input := range inputs {
		go func(ch <-chan message.Envelope) {
			defer in.wg.Done()
			for env := range ch {
				in.out <- env
			}
		}(input)
	}
	go func() {
		in.wg.Wait()
		close(in.out)
	}()
	return in
}

// Out is the merged output stream.
func (in *Integrator) Out() <-chan message.Envelope { return in.out }

// KeyFunc derives a routing key from an envelope.
type KeyFunc func(message.Envelope) string

// Demultiplexer routes one input stream to many downstream receivers, keyed
// by a routing function. Messages whose key has no registered downstream are
// dropped. A delivery that finds the downstream channel full drops that
// message and removes the registration.
type Demultiplexer struct {
	keyFn KeyFunc

	mu   sync.Mutex
	subs map[string]chan message.Envelope
}

// NewDemultiplexer starts consuming in and routing by keyFn.
func NewDemultiplexer(in <-chan message.Envelope, keyFn KeyFunc) *Demultiplexer {
	d := &Demultiplexer{
		keyFn: keyFn,
		subs:  make(map[string]chan message.Envelope),
	}
	go d.pump(in)
	return d
}

func (d *Demultiplexer) pump(in <-chan message.Envelope) {
	for env := range in {
		key := d.keyFn(env)
		d.mu.Lock()
		ch, ok := d.subs[key]
		d.mu.Unlock()
		if !ok {
			log.WithField("key", key).Trace("demultiplexer: no downstream registered, dropping")
			continue
		}
		select {
		case ch <- env:
		default:
			log.WithField("key", key).Warn("demultiplexer: downstream full, removing registration")
			d.removeReceiver(key)
		}
	}
	d.mu.Lock()
	for _, ch := range d.subs {
		close(ch)
	}
	d.subs = nil
	d.mu.Unlock()
}

// AddReceiver allocates a new downstream channel for key, replacing any
// existing registration.
func (d *Demultiplexer) AddReceiver(key string, buffer int) <-chan message.Envelope {
	ch := make(chan message.Envelope, buffer)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.subs == nil {
		close(ch)
		return ch
	}
	d.subs[key] = ch
	return ch
}

func (d *Demultiplexer) removeReceiver(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.subs, key)
}

// Dispatcher owns the routing table keyed by actor name, the only
// cross-actor shared resource besides the child-process table (spec §5). Its
// critical section is held only while adding or removing a route.
type Dispatcher struct {
	mu      sync.RWMutex
	targets map[string]func(message.Envelope)
}

// NewDispatcher constructs an empty routing table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{targets: make(map[string]func(message.Envelope))}
}

// Register adds (or replaces) the delivery function for an actor name.
func (d *Dispatcher) Register(name string, deliver func(message.Envelope)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.targets[name] = deliver
}

// Unregister removes an actor from the routing table.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.targets, name)
}

// Route delivers an envelope to the named actor. Unknown targets are dropped
// with a trace log, per spec §3 ("Unknown methods are dropped with a trace
// log" generalizes here to unknown routing targets).
func (d *Dispatcher) Route(name string, env message.Envelope) {
	d.mu.RLock()
	deliver, ok := d.targets[name]
	d.mu.RUnlock()
	if !ok {
		log.WithField("target", name).WithField("method", env.Method).Trace("dispatcher: unknown target, dropping")
		return
	}
	deliver(env)
}
