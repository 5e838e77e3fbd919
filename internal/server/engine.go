// Package server implements the server-side session engine described
// in spec §4.6: a single dispatch loop multiplexing a listening
// endpoint and N peer connections, each peer carrying a protocol state
// and a concurrent per-player core.Match.
package server

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/rawblock/mastermind-engine/internal/core"
	"github.com/rawblock/mastermind-engine/internal/protocol"
)

// Server is the session coordinator: it owns the shared Context, the
// seated peers, and round lifecycle state.
type Server struct {
	cfg Config
	ctx *core.Context

	listener net.Listener
	peers    []*Peer
	rl       *RateLimiter

	roundNum        int
	roundArrivalSeq int
	secret          core.Code
	gameOver        bool

	spectate *SpectateHub
	stats    atomic.Value // holds *Stats, read by the HTTP API

	ready chan struct{} // closed once the listener is bound, for tests
}

// New validates cfg, builds the shared Context, and returns a Server
// ready to Run.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := core.NewContext(cfg.coreConfig())
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		ctx:      c,
		peers:    make([]*Peer, cfg.NumPlayers),
		rl:       NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst),
		spectate: NewSpectateHub(),
		ready:    make(chan struct{}),
	}
	s.publishStats()
	return s, nil
}

// Addr returns the bound listen address. Only meaningful after Ready
// is closed.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Ready is closed once the listener is bound and accepting, letting
// callers (notably tests using ListenAddr "127.0.0.1:0") discover the
// ephemeral port before dialing.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Run executes the full server lifecycle: accept peers, drive rounds
// to completion or abort, and return once the game is over or ctx is
// cancelled (the SIGINT-driven abort flag described in §5).
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listener = ln
	log.Printf("[server] listening on %s for %d players", ln.Addr(), s.cfg.NumPlayers)
	close(s.ready)

	go s.spectate.Run()

	if s.cfg.HTTPAddr != "" {
		httpSrv := &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.NewHTTPRouter()}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("[server] http api stopped: %v", err)
			}
		}()
		defer httpSrv.Close()
	}

	if err := s.acceptPeers(); err != nil {
		ln.Close()
		return err
	}
	ln.Close() // §4.6 step 1: close the listener after the final accept

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	chans := make([]<-chan peerEvent, len(s.peers))
	for i, p := range s.peers {
		go s.readLoop(p)
		chans[i] = p.events
	}
	merged := channerics.Merge(chans)

	for !s.gameOver {
		select {
		case ev := <-merged:
			s.handleEvent(ev)
		case <-sigCh:
			s.abortGame("received SIGINT")
		case <-ctx.Done():
			s.abortGame("context cancelled")
			return ctx.Err()
		}
	}
	return nil
}

// acceptPeers blocks until NumPlayers connections are accepted (each
// past the rate limiter), sending each one RULES_RECEIVED then
// CHOOSING_NAME.
func (s *Server) acceptPeers() error {
	for i := 0; i < s.cfg.NumPlayers; i++ {
		conn, err := s.listener.Accept()
		if err != nil {
			return fmt.Errorf("server: accept: %w", err)
		}
		host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
		if !s.rl.Allow(host) {
			log.Printf("[server] rate-limited connection from %s", host)
			conn.Close()
			i--
			continue
		}

		p := newPeer(i, conn)
		rules := protocol.RulesPayload{
			PlayerID:   uint8(i),
			NumRounds:  uint8(s.cfg.NumRounds),
			MaxGuesses: uint8(s.cfg.MaxGuesses),
			NumSlots:   uint8(s.cfg.NumSlots),
			NumPlayers: uint8(s.cfg.NumPlayers),
			NumColors:  uint8(s.cfg.NumColors),
		}
		if err := p.send(protocol.RulesReceived); err != nil {
			conn.Close()
			return fmt.Errorf("server: send rules header to peer %d: %w", i, err)
		}
		if err := protocol.WriteRules(conn, rules); err != nil {
			conn.Close()
			return fmt.Errorf("server: send rules payload to peer %d: %w", i, err)
		}
		p.State = protocol.ChoosingName
		if err := p.send(protocol.ChoosingName); err != nil {
			conn.Close()
			return fmt.Errorf("server: send choosing-name to peer %d: %w", i, err)
		}
		s.peers[i] = p
		log.Printf("[server] peer %d connected from %s", i, conn.RemoteAddr())
	}
	return nil
}

// readLoop decodes one peer's incoming transition headers and
// fixed-size payloads, forwarding each as a peerEvent. It is the
// connection's only reader; every blocking read happens here, off the
// single dispatch loop, which only ever touches channels.
func (s *Server) readLoop(p *Peer) {
	r := bufio.NewReader(p.Conn)
	for {
		state, err := protocol.ReadState(r)
		if err != nil {
			p.events <- peerEvent{peer: p, err: err}
			return
		}

		var payload any
		switch state {
		case protocol.SentName:
			payload, err = protocol.ReadName(r)
		case protocol.AwaitingFeedback:
			payload, err = protocol.ReadGuess(r)
		case protocol.Acked, protocol.Aborted:
			// no payload
		default:
			// Payload-less or unrecognised for this role; the dispatch
			// loop's legality check will flag anything unexpected.
		}
		if err != nil {
			p.events <- peerEvent{peer: p, err: err}
			return
		}
		p.events <- peerEvent{peer: p, state: state, payload: payload}
		if state == protocol.Aborted {
			return
		}
	}
}

func (s *Server) handleEvent(ev peerEvent) {
	if ev.err != nil {
		s.abortGame(fmt.Sprintf("peer %d transport error: %v", ev.peer.Index, ev.err))
		return
	}
	if ev.state == protocol.Aborted {
		s.abortGame(fmt.Sprintf("peer %d sent ABORTED", ev.peer.Index))
		return
	}
	if !protocol.ServerLegal.Legal(ev.peer.State, ev.state) {
		s.abortGame(fmt.Sprintf("illegal transition from peer %d: %s -> %s", ev.peer.Index, ev.peer.State, ev.state))
		return
	}
	ev.peer.State = ev.state

	switch ev.state {
	case protocol.SentName:
		s.handleName(ev.peer, ev.payload.(protocol.NamePayload))
	case protocol.Acked:
		s.handleAck(ev.peer)
	case protocol.AwaitingFeedback:
		s.handleGuess(ev.peer, ev.payload.(protocol.GuessPayload))
	}
	s.publishStats()
}

// abortGame implements §4.6 step 8 / §5: any peer abort, illegal
// transition, or I/O failure broadcasts ABORTED then DISCONNECTED to
// every still-connected peer.
func (s *Server) abortGame(reason string) {
	log.Printf("[server] aborting game: %s", reason)
	for _, p := range s.peers {
		if p == nil || p.Conn == nil {
			continue
		}
		_ = p.send(protocol.Aborted)
		_ = p.send(protocol.Disconnected)
		p.Conn.Close()
	}
	s.gameOver = true
	s.publishStats()
}

func (s *Server) handleName(p *Peer, payload protocol.NamePayload) {
	name := payload.NameString()
	if name == "" || s.nameTaken(name, p) {
		p.State = protocol.ChoosingName
		_ = p.send(protocol.ChoosingName)
		return
	}
	p.Name = name
	p.State = protocol.NotAcked
	_ = p.send(protocol.NotAcked)
	_ = protocol.WriteRoundEnd(p.Conn, protocol.RoundEndPayload{Winner: -1})
}

func (s *Server) nameTaken(name string, exclude *Peer) bool {
	for _, other := range s.peers {
		if other == nil || other == exclude || other.Name == "" {
			continue
		}
		if other.Name == name { // case-sensitive exact compare, §4.6 step 4
			return true
		}
	}
	return false
}

func (s *Server) handleAck(p *Peer) {
	if !allAcked(s.peers) {
		return
	}
	s.beginRound()
}

func (s *Server) beginRound() {
	secret, err := s.ctx.DrawSecret()
	if err != nil {
		s.abortGame(fmt.Sprintf("failed to draw secret: %v", err))
		return
	}
	s.secret = secret
	for _, p := range s.peers {
		p.Match = core.NewMatch(s.ctx, false)
	}

	if s.roundNum == 0 {
		names := buildAckedNames(s.peers)
		for _, p := range s.peers {
			_ = p.send(protocol.Acked)
			_ = protocol.WriteAckedNames(p.Conn, names)
		}
	}

	for _, p := range s.peers {
		p.State = protocol.Guessing
		_ = p.send(protocol.Guessing)
	}
	s.spectate.BroadcastRoundStart(s.roundNum, s.ctx.N)
}

func (s *Server) handleGuess(p *Peer, payload protocol.GuessPayload) {
	guess := core.Code(payload.Code)
	fbIdx := s.ctx.Feedback(guess, s.secret)
	p.Match.Constrain(guess, fbIdx)

	waiting := !allFinished(s.peers)
	fb := protocol.FeedbackPayload{
		FeedbackIdx:      uint16(fbIdx),
		MatchState:       wireState(p.Match.State()),
		WaitingForOthers: boolToUint8(waiting),
	}
	if p.Match.State() == core.Lost {
		fb.Solution = uint16(s.secret)
	}

	p.State = protocol.GotFeedback
	_ = p.send(protocol.GotFeedback)
	_ = protocol.WriteFeedback(p.Conn, fb)

	s.spectate.BroadcastGuess(p.Index, p.Name, s.ctx.FormatCode(guess), fbIdx)

	switch p.Match.State() {
	case core.Won:
		s.roundArrivalSeq++
		p.FinishOrder = s.roundArrivalSeq
		p.State = protocol.Finished
		_ = p.send(protocol.Finished)
	case core.Lost:
		p.State = protocol.Finished
		_ = p.send(protocol.Finished)
	default:
		p.State = protocol.Guessing
		_ = p.send(protocol.Guessing)
	}

	if allFinished(s.peers) {
		s.endRound()
	}
}

func (s *Server) endRound() {
	winner, tie := roundResult(s.peers)
	if winner >= 0 {
		s.peers[winner].Points++
	}
	payload := buildRoundEndPayload(s.peers, winner, tie, s.secret)

	for _, p := range s.peers {
		p.Match = nil
		p.State = protocol.NotAcked
		_ = p.send(protocol.NotAcked)
		_ = protocol.WriteRoundEnd(p.Conn, payload)
	}
	s.spectate.BroadcastRoundEnd(s.roundNum, winner, tie)
	s.roundNum++

	if s.roundNum >= s.cfg.NumRounds {
		for _, p := range s.peers {
			p.State = protocol.Disconnected
			_ = p.send(protocol.Disconnected)
			p.Conn.Close()
		}
		s.gameOver = true
	}
}

func wireState(st core.State) protocol.MatchStateWire {
	switch st {
	case core.Won:
		return protocol.WireWon
	case core.Lost:
		return protocol.WireLost
	default:
		return protocol.WirePending
	}
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
