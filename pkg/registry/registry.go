// Package registry wires the point-to-point channels between simulated
// processes.
//
// For every unordered pair (i, j) with i < j exactly two queues exist. The
// queue i sends into toward j is the same object j receives from when it
// reads from i, and vice versa. Each queue handle is shared by both
// processes; neither side creates or replaces it after wiring.
package registry

import (
	"fmt"
	"log"
	"sort"

	"github.com/daviddao/lamportsim/pkg/channel"
	"github.com/daviddao/lamportsim/pkg/clock"
)

// Queue is the channel type carried between processes.
type Queue = channel.Blocking[clock.Clock]

// ChannelPair is one process's view of its link to a single peer.
type ChannelPair struct {
	Outbound *Queue
	Inbound  *Queue
}

// Registry maps a peer id to the ChannelPair linking the owner to it.
type Registry map[int]ChannelPair

// Set installs the pair for peer.
func (r Registry) Set(peer int, pair ChannelPair) { r[peer] = pair }

// Outbound returns the queue the owner sends into toward peer. An unknown
// peer means the schedule is malformed; Outbound panics.
func (r Registry) Outbound(peer int) *Queue {
	return r.lookup(peer).Outbound
}

// Inbound returns the queue the owner receives from when reading from peer.
// An unknown peer means the schedule is malformed; Inbound panics.
func (r Registry) Inbound(peer int) *Queue {
	return r.lookup(peer).Inbound
}

// Peers returns the ids of all wired peers in ascending order.
func (r Registry) Peers() []int {
	peers := make([]int, 0, len(r))
	for p := range r {
		peers = append(peers, p)
	}
	sort.Ints(peers)
	return peers
}

func (r Registry) lookup(peer int) ChannelPair {
	pair, ok := r[peer]
	if !ok {
		log.Panicf("no channel wired to peer %d", peer)
	}
	return pair
}

// Wire allocates the channels for n processes and returns one Registry per
// process, indexed by process id.
func Wire(n int) []Registry {
	regs := make([]Registry, n)
	for i := range regs {
		regs[i] = make(Registry, max(n-1, 0))
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			q1 := channel.New[clock.Clock](queueName(i, j))
			q2 := channel.New[clock.Clock](queueName(j, i))
			regs[i].Set(j, ChannelPair{Outbound: q1, Inbound: q2})
			regs[j].Set(i, ChannelPair{Outbound: q2, Inbound: q1})
		}
	}
	return regs
}

func queueName(from, to int) string {
	return fmt.Sprintf("%d->%d", from, to)
}
