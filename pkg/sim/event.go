package sim

import (
	"log"

	"github.com/daviddao/lamportsim/pkg/model"
)

// execute dispatches one scripted event to the matching clock operation
// and then records it. The set of event kinds is closed.
func (p *Process) execute(e model.Event) {
	p.env.log.Debug("executing event", "process", p.id, "event", e.String())

	switch e.Kind {
	case model.EventLocal:
		p.local()
	case model.EventSend:
		p.send(e.Peer)
	case model.EventRecv:
		p.receive(e.Peer)
	default:
		log.Panicf("process %d: unknown event kind %q", p.id, e.Kind)
	}

	p.observe(e)
}

// local is a plain step: IR1.
func (p *Process) local() {
	p.clock.Tick()
}

// send ticks and pushes the post-increment clock toward target.
func (p *Process) send(target int) {
	p.clock.Tick()
	out := p.channels.Outbound(target)
	out.Push(*p.clock)
	p.env.log.Debug("pushed clock", "process", p.id, "channel", out.Name(), "ts", p.clock.Value())
}

// receive blocks until source has sent, then merges before ticking: IR2.
func (p *Process) receive(source int) {
	in := p.channels.Inbound(source)
	p.env.log.Debug("waiting on channel", "process", p.id, "channel", in.Name())

	msg := in.Pop()
	p.clock.Receive(msg.TS)
	p.env.log.Debug("popped clock", "process", p.id, "channel", in.Name(), "msg_ts", msg.TS)
}

// observe applies the once-per-event side effects after the timestamp has
// reached its final value: bump the run-wide counter and emit.
func (p *Process) observe(e model.Event) {
	p.executed++
	p.env.events.Add(1)
	p.env.sink.Observe(model.Observation{
		RunID:     p.env.runID,
		ProcessID: p.id,
		Seq:       p.executed,
		LamportTS: p.clock.Value(),
		Kind:      e.Kind,
		Peer:      e.Peer,
	})
}
