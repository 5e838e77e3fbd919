package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/rawblock/mastermind-engine/internal/protocol"
)

// TestSinglePlayerGameEndToEnd drives one full game over a real TCP
// loopback connection: name negotiation, the ACK gate, a brute-force
// guessing loop over a two-code space, and the round/game-end summary.
func TestSinglePlayerGameEndToEnd(t *testing.T) {
	cfg := Config{
		ListenAddr: "127.0.0.1:0",
		NumPlayers: 1,
		NumRounds:  1,
		MaxGuesses: 2,
		NumSlots:   1,
		NumColors:  2,
		Strategy:   "minmax",
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- srv.Run(context.Background()) }()

	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server never became ready")
	}

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))
	r := bufio.NewReader(conn)

	expectState(t, r, protocol.RulesReceived)
	if _, err := protocol.ReadRules(r); err != nil {
		t.Fatalf("ReadRules: %v", err)
	}
	expectState(t, r, protocol.ChoosingName)

	if err := protocol.WriteState(conn, protocol.SentName); err != nil {
		t.Fatalf("write SENT_NAME: %v", err)
	}
	if err := protocol.WriteName(conn, protocol.NewNamePayload("solo")); err != nil {
		t.Fatalf("write name payload: %v", err)
	}

	expectState(t, r, protocol.NotAcked)
	if _, err := protocol.ReadRoundEnd(r); err != nil {
		t.Fatalf("ReadRoundEnd (pre-game): %v", err)
	}

	if err := protocol.WriteState(conn, protocol.Acked); err != nil {
		t.Fatalf("write ACKED: %v", err)
	}

	expectState(t, r, protocol.Acked)
	if _, err := protocol.ReadAckedNames(r); err != nil {
		t.Fatalf("ReadAckedNames: %v", err)
	}
	expectState(t, r, protocol.Guessing)

	won := false
	for _, guess := range []uint16{0, 1} {
		if err := protocol.WriteState(conn, protocol.AwaitingFeedback); err != nil {
			t.Fatalf("write AWAITING_FEEDBACK: %v", err)
		}
		if err := protocol.WriteGuess(conn, protocol.GuessPayload{Code: guess}); err != nil {
			t.Fatalf("write guess: %v", err)
		}

		expectState(t, r, protocol.GotFeedback)
		fb, err := protocol.ReadFeedback(r)
		if err != nil {
			t.Fatalf("ReadFeedback: %v", err)
		}

		if fb.MatchState == protocol.WireWon {
			expectState(t, r, protocol.Finished)
			won = true
			break
		}
		expectState(t, r, protocol.Guessing)
	}
	if !won {
		t.Fatalf("brute force over a 2-code space must win within 2 guesses")
	}

	expectState(t, r, protocol.NotAcked)
	end, err := protocol.ReadRoundEnd(r)
	if err != nil {
		t.Fatalf("ReadRoundEnd (final): %v", err)
	}
	if end.Winner != 0 {
		t.Fatalf("Winner = %d, want 0 (the only player)", end.Winner)
	}

	expectState(t, r, protocol.Disconnected)

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("srv.Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down after game end")
	}
}

func expectState(t *testing.T, r *bufio.Reader, want protocol.State) {
	t.Helper()
	got, err := protocol.ReadState(r)
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if got != want {
		t.Fatalf("state = %v, want %v", got, want)
	}
}
