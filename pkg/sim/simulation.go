// Package sim runs a Lamport clock simulation.
//
// A Simulation owns one Process per scripted process. All processes start
// at timestamp 0 with their event queues fully loaded, and the channels for
// every pair are wired before any of them runs. Run starts one goroutine
// per process and waits for all of them to finish.
//
// The only suspension point is a Receive popping from an empty channel.
// If the schedule contains a Receive with no matching Send, the receiving
// goroutine and therefore Run block forever. Nothing here detects that.
package sim

import (
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"github.com/daviddao/lamportsim/pkg/model"
	"github.com/daviddao/lamportsim/pkg/registry"
)

// Option configures a Simulation.
type Option func(*Simulation)

// WithRunID sets the run id stamped on every observation. By default a
// fresh xid is generated.
func WithRunID(id string) Option {
	return func(s *Simulation) { s.env.runID = id }
}

// WithLogger routes the debug trace to l. A nil l keeps the trace off.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.env.log = l
		}
	}
}

// Simulation is the driver: it builds processes, wires channels and runs
// the processes concurrently. It performs no clock logic itself.
type Simulation struct {
	env   env
	procs []*Process
}

// New builds a simulation for sched. Observations go to sink; a nil sink
// discards them. The schedule is assumed well formed.
func New(sched model.Schedule, sink Sink, opts ...Option) *Simulation {
	s := &Simulation{}
	s.env.sink = sink
	s.env.log = slog.New(slog.DiscardHandler)
	for _, opt := range opts {
		opt(s)
	}
	if s.env.sink == nil {
		s.env.sink = Discard
	}
	if s.env.runID == "" {
		s.env.runID = xid.New().String()
	}

	regs := registry.Wire(sched.NumProcs())
	s.procs = make([]*Process, sched.NumProcs())
	for i, script := range sched.Procs {
		p := newProcess(i, regs[i], &s.env)
		for _, e := range script {
			p.enqueue(e)
		}
		s.procs[i] = p
	}
	return s
}

// Run starts every process on its own goroutine and blocks until all of
// them are Finished. Call it once.
func (s *Simulation) Run() {
	s.env.log.Debug("simulation starting", "run", s.env.runID, "processes", len(s.procs))

	var wg sync.WaitGroup
	for _, p := range s.procs {
		wg.Go(p.Run)
	}
	wg.Wait()

	s.env.log.Debug("simulation finished", "run", s.env.runID, "events", s.env.events.Load())
}

// RunID returns the id stamped on this run's observations.
func (s *Simulation) RunID() string { return s.env.runID }

// Events returns the number of events executed so far across all
// processes.
func (s *Simulation) Events() int64 { return s.env.events.Load() }

// Processes returns the processes indexed by id.
func (s *Simulation) Processes() []*Process { return s.procs }

// Process returns process id.
func (s *Simulation) Process(id int) *Process { return s.procs[id] }
