// Package model defines the core domain types for lamportsim.
//
// A simulation is a fixed set of processes, each with a pre-scripted list of
// events. Three kinds of events exist:
//
//   - local: a plain step; the process clock ticks.
//   - send: tick, then push the clock value to one peer.
//   - recv: pop a clock value from one peer (blocking), merge it into the
//     local clock with max(own, received), then tick.
//
// Every executed event produces one Observation: the process id and its
// post-event Lamport timestamp.
package model

import (
	"fmt"
	"time"
)

// EventKind enumerates the three event variants.
type EventKind string

const (
	EventLocal EventKind = "local"
	EventSend  EventKind = "send"
	EventRecv  EventKind = "recv"
)

// NoPeer is the Peer value of a local event.
const NoPeer = -1

// Event is one scripted step of a process. Peer is the target of a send or
// the source of a receive, and NoPeer for local events.
type Event struct {
	Kind EventKind `json:"kind"`
	Peer int       `json:"peer"`
}

// Local returns a local-step event.
func Local() Event { return Event{Kind: EventLocal, Peer: NoPeer} }

// Send returns an event that sends the clock to target.
func Send(target int) Event { return Event{Kind: EventSend, Peer: target} }

// Receive returns an event that receives a clock from source.
func Receive(source int) Event { return Event{Kind: EventRecv, Peer: source} }

// String renders the event in schedule token form: "I", "S 1", "R 0".
func (e Event) String() string {
	switch e.Kind {
	case EventLocal:
		return "I"
	case EventSend:
		return fmt.Sprintf("S %d", e.Peer)
	case EventRecv:
		return fmt.Sprintf("R %d", e.Peer)
	default:
		return fmt.Sprintf("?%s %d", e.Kind, e.Peer)
	}
}

// Schedule is the static input of a simulation: Procs[i] is the ordered
// script of process i.
type Schedule struct {
	Procs [][]Event `json:"procs"`
}

// NumProcs returns the number of processes in the schedule.
func (s Schedule) NumProcs() int { return len(s.Procs) }

// NumEvents returns the total number of scripted events.
func (s Schedule) NumEvents() int {
	n := 0
	for _, p := range s.Procs {
		n += len(p)
	}
	return n
}

// Observation is emitted once per executed event, after the timestamp has
// reached its final value for that event. Seq is the 1-based position of
// the event within its process.
type Observation struct {
	RunID     string    `json:"run_id"`
	ProcessID int       `json:"process_id"`
	Seq       int       `json:"seq"`
	LamportTS int64     `json:"lamport_ts"`
	Kind      EventKind `json:"kind"`
	Peer      int       `json:"peer"`
}

// Event returns the scripted event this observation was produced by.
func (o Observation) Event() Event { return Event{Kind: o.Kind, Peer: o.Peer} }

// Run is the metadata of a recorded simulation run.
type Run struct {
	ID         string    `json:"id"`
	NumProcs   int       `json:"num_procs"`
	Events     int64     `json:"events"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Finished reports whether the run reached completion.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }
