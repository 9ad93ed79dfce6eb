package sim

import (
	"log/slog"
	"sync/atomic"

	"github.com/daviddao/lamportsim/pkg/clock"
	"github.com/daviddao/lamportsim/pkg/model"
	"github.com/daviddao/lamportsim/pkg/registry"
)

// State is the lifecycle position of a Process.
type State int32

const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// env is the run-wide context every process of a Simulation shares.
type env struct {
	runID  string
	events atomic.Int64
	sink   Sink
	log    *slog.Logger
}

// Process is one simulated logical process. It owns its clock exclusively;
// the only state it shares with other processes is the channels in its
// registry.
type Process struct {
	id       int
	clock    *clock.Clock
	channels registry.Registry
	pending  []model.Event
	executed int
	state    atomic.Int32
	env      *env
}

func newProcess(id int, channels registry.Registry, e *env) *Process {
	return &Process{
		id:       id,
		clock:    clock.New(id),
		channels: channels,
		env:      e,
	}
}

// ID returns the process identity.
func (p *Process) ID() int { return p.id }

// State returns the current lifecycle state. Safe to call from any
// goroutine.
func (p *Process) State() State { return State(p.state.Load()) }

// Timestamp returns the latest clock value. Only meaningful once the
// process is Finished, or from the goroutine running it.
func (p *Process) Timestamp() int64 { return p.clock.Value() }

// Pending returns the number of events not yet executed. Same caveat as
// Timestamp.
func (p *Process) Pending() int { return len(p.pending) }

func (p *Process) enqueue(e model.Event) {
	p.pending = append(p.pending, e)
}

// Run drains the pending queue in FIFO order, executing each event to
// completion. It returns once the queue is empty. A Receive that is never
// matched by a Send blocks Run forever.
func (p *Process) Run() {
	p.state.Store(int32(Running))
	p.env.log.Debug("process started", "process", p.id, "events", len(p.pending))

	for len(p.pending) > 0 {
		e := p.pending[0]
		p.pending = p.pending[1:]
		p.execute(e)
	}

	p.state.Store(int32(Finished))
	p.env.log.Debug("process finished", "process", p.id, "ts", p.clock.Value())
}
