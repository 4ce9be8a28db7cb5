// Package rank implements a message-passing "world" of P ranks, each a
// goroutine, communicating exclusively through tagged point-to-point
// channels (Send/Probe/Recv); the package has no collective primitives.
// There is no shared memory between ranks — every Send hands the receiver
// its own copy of the payload, so no cross-goroutine pointer graph exists
// between bands.
//
// This generalizes a channel-fanout idiom (one producer broadcasting to
// many subscriber channels) to many-to-one and one-to-many exchanges
// across a fixed set of ranks, with an explicit tag namespace mirroring
// an MPI-style tag scheme.
package rank

import (
	"fmt"

	"github.com/cwbudde/distconv/internal/model"
	"github.com/cwbudde/distconv/internal/transport"
)

// Message is one framed transfer: a header plus (for data tags) a bulk
// pixel payload, tagged and stamped with its sender.
type Message struct {
	Tag     transport.Tag
	From    int
	Header  model.ChunkHeader
	Payload []byte
}

// port is one rank's private inbox. Only that rank's goroutine may call
// Probe/Recv on it, so no internal locking is required beyond the
// channel's own synchronization.
type port struct {
	ch     chan Message
	peeked *Message
}

// Probe reports whether a message is available without consuming it.
func (p *port) Probe() bool {
	if p.peeked != nil {
		return true
	}
	select {
	case m := <-p.ch:
		p.peeked = &m
		return true
	default:
		return false
	}
}

// Recv blocks until a message is available, then consumes and returns it.
func (p *port) Recv() Message {
	if p.peeked != nil {
		m := *p.peeked
		p.peeked = nil
		return m
	}
	return <-p.ch
}

// World is a fixed-size collection of rank inboxes. Construct one per job
// run; ranks are goroutines the caller spawns, each holding its own rank
// index into the World.
type World struct {
	size  int
	ports []*port
}

// NewWorld allocates a world of the given size. Inbox depth is generous
// enough that a master dispatching to every worker up front never blocks
// on a slow worker's channel.
func NewWorld(size int) *World {
	w := &World{size: size, ports: make([]*port, size)}
	for i := range w.ports {
		w.ports[i] = &port{ch: make(chan Message, 64)}
	}
	return w
}

// Size returns the number of ranks in the world.
func (w *World) Size() int { return w.size }

// Send delivers m to rank `to`, stamping it with the sender's rank.
// Messages from a given sender to a given receiver on a given tag are
// received in send order (Go channel FIFO ordering per goroutine).
func (w *World) Send(from, to int, m Message) error {
	if to < 0 || to >= w.size {
		return fmt.Errorf("rank: send to out-of-range rank %d (world size %d)", to, w.size)
	}
	m.From = from
	m.Payload = append([]byte(nil), m.Payload...)
	w.ports[to].ch <- m
	return nil
}

// Probe reports whether rank has a message waiting, without consuming it.
func (w *World) Probe(rank int) bool { return w.ports[rank].Probe() }

// Recv blocks until rank receives a message, then consumes and returns it.
func (w *World) Recv(rank int) Message { return w.ports[rank].Recv() }

// Close closes every rank's inbox channel; no further sends may target
// them. A Recv on a closed, empty inbox returns a zero Message.
func (w *World) Close() {
	for _, p := range w.ports {
		close(p.ch)
	}
}
