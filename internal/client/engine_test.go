package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rawblock/mastermind-engine/internal/core"
	"github.com/rawblock/mastermind-engine/internal/protocol"
)

// fakeServer drives one side of the wire protocol for a single-player,
// single-round game, independent of the internal/server package, so
// this test exercises only the client engine's state walk.
func fakeServer(t *testing.T, conn net.Conn) {
	t.Helper()
	defer conn.Close()

	ctx, err := core.NewContext(core.Config{Colors: 2, Slots: 1, MaxGuesses: 2})
	if err != nil {
		t.Errorf("fakeServer: NewContext: %v", err)
		return
	}
	secret := core.Code(0)

	must := func(err error) {
		if err != nil {
			t.Errorf("fakeServer: %v", err)
		}
	}

	must(protocol.WriteState(conn, protocol.RulesReceived))
	must(protocol.WriteRules(conn, protocol.RulesPayload{NumRounds: 1, MaxGuesses: 2, NumSlots: 1, NumPlayers: 1, NumColors: 2}))
	must(protocol.WriteState(conn, protocol.ChoosingName))

	st, err := protocol.ReadState(conn)
	must(err)
	if st != protocol.SentName {
		t.Errorf("fakeServer: got %v, want SENT_NAME", st)
	}
	if _, err := protocol.ReadName(conn); err != nil {
		t.Errorf("fakeServer: ReadName: %v", err)
	}

	must(protocol.WriteState(conn, protocol.NotAcked))
	must(protocol.WriteRoundEnd(conn, protocol.RoundEndPayload{Winner: -1}))

	st, err = protocol.ReadState(conn)
	must(err)
	if st != protocol.Acked {
		t.Errorf("fakeServer: got %v, want ACKED", st)
	}

	must(protocol.WriteState(conn, protocol.Acked))
	must(protocol.WriteAckedNames(conn, protocol.AckedNamesPayload{}))
	must(protocol.WriteState(conn, protocol.Guessing))

	for {
		st, err = protocol.ReadState(conn)
		must(err)
		if st != protocol.AwaitingFeedback {
			t.Errorf("fakeServer: got %v, want AWAITING_FEEDBACK", st)
			return
		}
		guess, err := protocol.ReadGuess(conn)
		must(err)

		fbIdx := ctx.Feedback(core.Code(guess.Code), secret)
		wire := protocol.WirePending
		if fbIdx == ctx.WinningFeedback() {
			wire = protocol.WireWon
		}
		must(protocol.WriteState(conn, protocol.GotFeedback))
		must(protocol.WriteFeedback(conn, protocol.FeedbackPayload{FeedbackIdx: uint16(fbIdx), MatchState: wire}))

		if wire == protocol.WireWon {
			must(protocol.WriteState(conn, protocol.Finished))
			break
		}
		must(protocol.WriteState(conn, protocol.Guessing))
	}

	must(protocol.WriteState(conn, protocol.NotAcked))
	must(protocol.WriteRoundEnd(conn, protocol.RoundEndPayload{Winner: 0}))
	must(protocol.WriteState(conn, protocol.Disconnected))
}

func TestEngineRunPlaysSingleRoundGame(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		fakeServer(t, conn)
	}()

	eng, err := NewEngine(Config{
		ServerAddr: ln.Addr().String(),
		Name:       "tester",
		Strategy:   "minmax",
		AutoPlay:   true,
	}, NullPrompter{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := eng.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	select {
	case <-serverDone:
	case <-time.After(2 * time.Second):
		t.Fatal("fakeServer goroutine did not finish")
	}
}

// failingPrompter simulates EOF on the guess prompt (user hit ctrl-D).
type failingPrompter struct{ NullPrompter }

func (failingPrompter) ReadGuess(ctx *core.Context, m *core.Match) (core.Code, error) {
	return 0, errors.New("stdin closed")
}

// TestEngineSendsAbortedOnPromptEOF drives spec §4.7 point 3 / §7:
// EOF on the guess prompt must send ABORTED and close, not just bubble
// a bare read error up to the caller.
func TestEngineSendsAbortedOnPromptEOF(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	gotAborted := make(chan bool, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			gotAborted <- false
			return
		}
		defer conn.Close()

		_ = protocol.WriteState(conn, protocol.RulesReceived)
		_ = protocol.WriteRules(conn, protocol.RulesPayload{NumRounds: 1, MaxGuesses: 2, NumSlots: 1, NumPlayers: 1, NumColors: 2})
		_ = protocol.WriteState(conn, protocol.ChoosingName)

		if _, err := protocol.ReadState(conn); err != nil {
			gotAborted <- false
			return
		}
		if _, err := protocol.ReadName(conn); err != nil {
			gotAborted <- false
			return
		}
		_ = protocol.WriteState(conn, protocol.NotAcked)
		_ = protocol.WriteRoundEnd(conn, protocol.RoundEndPayload{Winner: -1})

		if _, err := protocol.ReadState(conn); err != nil { // ACKED
			gotAborted <- false
			return
		}
		_ = protocol.WriteState(conn, protocol.Guessing)

		st, err := protocol.ReadState(conn)
		gotAborted <- err == nil && st == protocol.Aborted
	}()

	eng, err := NewEngine(Config{
		ServerAddr: ln.Addr().String(),
		Name:       "tester",
		Strategy:   "minmax",
		AutoPlay:   false,
	}, failingPrompter{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := eng.Run(ctx)
	var aborted *ErrAborted
	if !errors.As(runErr, &aborted) {
		t.Fatalf("Run err = %v, want *ErrAborted", runErr)
	}

	select {
	case ok := <-gotAborted:
		if !ok {
			t.Fatal("server did not observe an ABORTED header from the client")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server goroutine did not finish")
	}
}

// TestEngineSendsAbortedOnIllegalTransition drives spec §4.5/§4.7/§8.7:
// a header outside ClientLegal must make the client send ABORTED and
// end the session with an *ErrAborted, not a bare transport error.
func TestEngineSendsAbortedOnIllegalTransition(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	gotAborted := make(chan bool, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			gotAborted <- false
			return
		}
		defer conn.Close()

		_ = protocol.WriteState(conn, protocol.RulesReceived)
		_ = protocol.WriteRules(conn, protocol.RulesPayload{NumRounds: 1, MaxGuesses: 2, NumSlots: 1, NumPlayers: 1, NumColors: 2})
		// RULES_RECEIVED -> FINISHED is not in ClientLegal.
		_ = protocol.WriteState(conn, protocol.Finished)

		st, err := protocol.ReadState(conn)
		gotAborted <- err == nil && st == protocol.Aborted
	}()

	eng, err := NewEngine(Config{
		ServerAddr: ln.Addr().String(),
		Name:       "tester",
		Strategy:   "minmax",
		AutoPlay:   true,
	}, NullPrompter{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runErr := eng.Run(ctx)
	var aborted *ErrAborted
	if !errors.As(runErr, &aborted) {
		t.Fatalf("Run err = %v, want *ErrAborted", runErr)
	}

	select {
	case ok := <-gotAborted:
		if !ok {
			t.Fatal("server did not observe an ABORTED header from the client")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server goroutine did not finish")
	}
}
