package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rawblock/mastermind-engine/internal/core"
	"github.com/rawblock/mastermind-engine/internal/protocol"
)

// ErrAborted is returned when the server broadcasts ABORTED, per spec
// §7: any illegal transition or transport failure on either side ends
// the game for everyone.
type ErrAborted struct{ Reason string }

func (e *ErrAborted) Error() string { return fmt.Sprintf("game aborted: %s", e.Reason) }

// Engine is the client-side session: one TCP connection carried
// through the full client-receive transition table, round after round.
type Engine struct {
	cfg      Config
	prompter Prompter

	conn  net.Conn
	r     *bufio.Reader
	state protocol.State

	ctx        *core.Context
	rules      protocol.RulesPayload
	roundsDone int
	roundNames []string

	pendingNotAcked bool // set when negotiateName already consumed the NOT_ACKED header
}

// NewEngine validates cfg and returns an Engine ready to Run.
func NewEngine(cfg Config, prompter Prompter) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if prompter == nil {
		prompter = NullPrompter{}
	}
	return &Engine{cfg: cfg, prompter: prompter}, nil
}

// Run connects with exponential-backoff retry (generalizing the
// teacher's fail-fast startup into a reconnect loop, since a client
// dialing a not-yet-up server is an expected condition, not an
// operator error) and then drives the session to its natural end.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.connect(ctx); err != nil {
		return err
	}
	defer e.conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	done := make(chan error, 1)
	go func() { done <- e.sessionLoop() }()

	select {
	case err := <-done:
		return err
	case <-sigCh:
		// §7 user abort: send ABORTED, close, and let sessionLoop's
		// blocked read/prompt unwind against the closed connection.
		reason := "user interrupt"
		e.prompter.RenderAborted(reason)
		_ = protocol.WriteState(e.conn, protocol.Aborted)
		e.conn.Close()
		<-done
		return &ErrAborted{Reason: reason}
	}
}

func (e *Engine) connect(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // never give up on elapsed time; only ctx cancellation stops the retries
	bctx := backoff.WithContext(b, ctx)

	return backoff.Retry(func() error {
		conn, err := net.DialTimeout("tcp", e.cfg.ServerAddr, 5*time.Second)
		if err != nil {
			return err
		}
		e.conn = conn
		e.r = bufio.NewReader(conn)
		e.state = protocol.Connected
		return nil
	}, bctx)
}

// sessionLoop implements spec §4.7: rules, name negotiation, the ACK
// gate, the per-round guessing loop, and the NOT_ACKED summary, until
// DISCONNECTED or ABORTED.
func (e *Engine) sessionLoop() error {
	if err := e.expect(protocol.RulesReceived); err != nil {
		return err
	}
	rules, err := protocol.ReadRules(e.r)
	if err != nil {
		return err
	}
	e.rules = rules
	e.ctx, err = core.NewContext(core.Config{
		Colors:     int(rules.NumColors),
		Slots:      int(rules.NumSlots),
		MaxGuesses: int(rules.MaxGuesses),
	})
	if err != nil {
		return fmt.Errorf("client: server rules produced an invalid context: %w", err)
	}
	e.prompter.RenderRules(rules)

	if err := e.negotiateName(); err != nil {
		return err
	}

	for {
		if err := e.expect(protocol.NotAcked); err != nil {
			return err
		}
		roundEnd, err := protocol.ReadRoundEnd(e.r)
		if err != nil {
			return err
		}
		if e.roundsDone > 0 {
			e.prompter.RenderRoundEnd(e.ctx, roundEnd, e.roundNames)
		}

		if e.roundsDone >= int(e.rules.NumRounds) {
			return e.expectDisconnected()
		}

		if err := e.sendState(protocol.Acked); err != nil {
			return err
		}

		state, err := e.readState()
		if err != nil {
			return err
		}
		switch state {
		case protocol.Acked:
			names, err := protocol.ReadAckedNames(e.r)
			if err != nil {
				return err
			}
			e.roundNames = decodeRoster(names, int(e.rules.NumPlayers))
			e.prompter.RenderRoster(e.roundNames)
			if err := e.expect(protocol.Guessing); err != nil {
				return err
			}
		case protocol.Guessing:
			// round starts directly, no roster broadcast this round
		default:
			return e.illegalTransition(state)
		}

		if err := e.playRound(); err != nil {
			return err
		}
		e.roundsDone++
	}
}

func (e *Engine) negotiateName() error {
	if err := e.expect(protocol.ChoosingName); err != nil {
		return err
	}
	name := e.cfg.Name
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			name = fmt.Sprintf("%s%d", e.cfg.Name, attempt)
		}
		if err := e.sendState(protocol.SentName); err != nil {
			return err
		}
		if err := protocol.WriteName(e.conn, protocol.NewNamePayload(name)); err != nil {
			return err
		}

		state, err := e.readState()
		if err != nil {
			return err
		}
		switch state {
		case protocol.ChoosingName:
			e.prompter.RenderNameRejected()
			continue
		case protocol.NotAcked:
			// sessionLoop reads the RoundEndPayload that follows.
			return e.pushBackNotAcked()
		default:
			return e.illegalTransition(state)
		}
	}
}

// pushBackNotAcked exists because negotiateName already consumed the
// NOT_ACKED header while probing the server's reply; sessionLoop's
// main loop expects to read it itself, so record that it has already
// arrived.
func (e *Engine) pushBackNotAcked() error {
	e.pendingNotAcked = true
	return nil
}

func (e *Engine) playRound() error {
	m := core.NewMatch(e.ctx, true)
	for {
		var guess core.Code
		var err error
		if e.cfg.AutoPlay {
			guess = e.ctx.Recommend(m, e.cfg.strategy())
		} else {
			guess, err = e.prompter.ReadGuess(e.ctx, m)
			if err != nil {
				return e.abortLocal("user aborted the guess prompt")
			}
		}

		if err := e.sendState(protocol.AwaitingFeedback); err != nil {
			return err
		}
		if err := protocol.WriteGuess(e.conn, protocol.GuessPayload{Code: uint16(guess)}); err != nil {
			return err
		}

		if err := e.expect(protocol.GotFeedback); err != nil {
			return err
		}
		fb, err := protocol.ReadFeedback(e.r)
		if err != nil {
			return err
		}
		fbIdx := int(fb.FeedbackIdx)
		m.Constrain(guess, fbIdx)
		e.prompter.RenderGuessResult(e.ctx, guess, e.ctx.Decode(fbIdx), fb.WaitingForOthers != 0)

		state, err := e.readState()
		if err != nil {
			return err
		}
		switch state {
		case protocol.Finished:
			return nil
		case protocol.Guessing:
			continue
		default:
			return e.illegalTransition(state)
		}
	}
}

func decodeRoster(p protocol.AckedNamesPayload, n int) []string {
	names := make([]string, n)
	for i := 0; i < n && i < len(p.Names); i++ {
		names[i] = protocol.NamePayload{Name: p.Names[i]}.NameString()
	}
	return names
}

func (e *Engine) sendState(s protocol.State) error {
	if err := protocol.WriteState(e.conn, s); err != nil {
		return err
	}
	e.state = s
	return nil
}

// readState reads the next header and validates it against
// ClientLegal before accepting it, per spec §4.5/§4.7 point 2 and the
// generic "the receiver validates it against a static table" property
// in §8.7: a header the table rejects is fatal, mirroring
// server/engine.go's handleEvent check of ServerLegal.
func (e *Engine) readState() (protocol.State, error) {
	got, err := protocol.ReadState(e.r)
	if err != nil {
		return got, err
	}
	if got == protocol.Aborted {
		return got, e.handleAbort()
	}
	if !protocol.ClientLegal.Legal(e.state, got) {
		return got, e.illegalTransition(got)
	}
	e.state = got
	return got, nil
}

// expect reads the next header and fails loudly if it isn't want,
// since every step of the client-receive table is deterministic given
// the server's own bookkeeping.
func (e *Engine) expect(want protocol.State) error {
	if e.pendingNotAcked && want == protocol.NotAcked {
		e.pendingNotAcked = false
		return nil
	}
	got, err := e.readState()
	if err != nil {
		return err
	}
	if got != want {
		return e.illegalTransition(got)
	}
	return nil
}

func (e *Engine) expectDisconnected() error {
	if err := e.expect(protocol.Disconnected); err != nil {
		return err
	}
	return nil
}

func (e *Engine) handleAbort() error {
	reason := "server aborted the game"
	e.prompter.RenderAborted(reason)
	_, _ = protocol.ReadState(e.r) // drain the DISCONNECTED that follows ABORTED, best-effort
	return &ErrAborted{Reason: reason}
}

// illegalTransition implements §4.5/§7: a header outside the legal
// table (or one the caller wasn't expecting at this point in the
// session) is fatal. Send ABORTED before unwinding, same as the
// server's abortGame path.
func (e *Engine) illegalTransition(got protocol.State) error {
	reason := fmt.Sprintf("illegal transition %s -> %s", e.state, got)
	_ = protocol.WriteState(e.conn, protocol.Aborted)
	return &ErrAborted{Reason: reason}
}

// abortLocal implements §7's "User abort (EOF on prompt, SIGINT) sends
// ABORTED and closes": write an ABORTED header best-effort and end the
// session; Run's deferred conn.Close does the actual teardown.
func (e *Engine) abortLocal(reason string) error {
	_ = protocol.WriteState(e.conn, protocol.Aborted)
	return &ErrAborted{Reason: reason}
}
