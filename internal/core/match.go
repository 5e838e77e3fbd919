package core

import "github.com/google/uuid"

// State is a Match's lifecycle state.
type State int

const (
	Pending State = iota
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Turn records one guess/feedback exchange.
type Turn struct {
	Guess    Code
	Feedback int
}

// Match is the mutable per-game solution-space tracker described in
// §3: it never owns its Context, only references it, and it is owned
// by exactly one caller (one peer session on the server, or the
// single-threaded solo-play loop).
type Match struct {
	ID    string
	ctx   *Context
	Turns []Turn
	state State

	tracking     bool
	space        *BitSet
	numSolutions int
}

// NewMatch creates a fresh Match over ctx. If tracking is true the
// full solution space is allocated and maintained by Constrain;
// tracking disabled is the "degraded mode" the spec allows when bit
// set allocation is too costly for the deployment.
func NewMatch(ctx *Context, tracking bool) *Match {
	m := &Match{ID: uuid.NewString(), ctx: ctx, state: Pending}
	if tracking {
		m.space = NewFullBitSet(ctx.M)
		m.numSolutions = ctx.M
		m.tracking = true
	}
	return m
}

// Context returns the Match's back-reference. Match handlers must
// never mutate the returned Context.
func (m *Match) Context() *Context { return m.ctx }

// State returns the current lifecycle state.
func (m *Match) State() State { return m.state }

// NumSolutions returns the tracked solution-space population, or -1
// if tracking is disabled.
func (m *Match) NumSolutions() int {
	if !m.tracking {
		return -1
	}
	return m.numSolutions
}

// Space returns the tracked solution-space bit set, or nil if
// tracking is disabled.
func (m *Match) Space() *BitSet { return m.space }

// TurnCount returns the number of guesses played so far.
func (m *Match) TurnCount() int { return len(m.Turns) }

// Constrain appends (guess, fb) to the history, shrinks the tracked
// solution space to codes consistent with every feedback received so
// far, and updates state. Constrain is total: it never fails, even if
// fb is inconsistent with history (num_solutions may reach 0, which
// callers must treat as a game-rule violation and abort the match).
//
// num_solutions is updated unconditionally, including on the winning
// turn (spec §9 Open Question).
func (m *Match) Constrain(guess Code, fb int) {
	m.Turns = append(m.Turns, Turn{Guess: guess, Feedback: fb})

	if m.tracking {
		m.space.ForEach(func(c int) bool {
			if m.ctx.Feedback(guess, Code(c)) != fb {
				m.space.Clear(c)
			}
			return true
		})
		m.numSolutions = m.space.Count()
	}

	switch {
	case fb == m.ctx.WinningFeedback():
		m.state = Won
	case len(m.Turns) >= m.ctx.T:
		m.state = Lost
	default:
		m.state = Pending
	}
}

// Replay rebuilds a Match from scratch by applying history in order;
// used to verify the idempotence/replay testable property in §8.
func Replay(ctx *Context, tracking bool, history []Turn) *Match {
	m := NewMatch(ctx, tracking)
	for _, t := range history {
		m.Constrain(t.Guess, t.Feedback)
	}
	return m
}
