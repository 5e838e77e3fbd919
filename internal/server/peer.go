package server

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rawblock/mastermind-engine/internal/core"
	"github.com/rawblock/mastermind-engine/internal/protocol"
)

// Peer is the server-side per-player session state described in spec
// §3: {state, socket, name, match, points, finish_order}.
type Peer struct {
	Index int
	ID    string
	Conn  net.Conn

	State protocol.State
	Name  string
	Match *core.Match

	Points      int
	FinishOrder int // set when the peer wins a round, for the speed tie-break

	writeMu sync.Mutex
	events  chan peerEvent
}

// peerEvent is what a peer's read goroutine hands to the server's
// single dispatch loop: the newly-announced state, a typed payload (or
// nil), and any transport error that ended the read loop.
type peerEvent struct {
	peer    *Peer
	state   protocol.State
	payload any
	err     error
}

func newPeer(index int, conn net.Conn) *Peer {
	return &Peer{
		Index:  index,
		ID:     uuid.NewString(),
		Conn:   conn,
		State:  protocol.Connected,
		events: make(chan peerEvent, 4),
	}
}

// send writes a bare transition header, serialized against concurrent
// writes to the same connection (the dispatch loop is the only writer
// today, but writeMu keeps the type safe if that changes).
func (p *Peer) send(s protocol.State) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return protocol.WriteState(p.Conn, s)
}
