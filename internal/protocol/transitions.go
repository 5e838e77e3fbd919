package protocol

// transitionSet is a (from, to) legality table.
type transitionSet map[[2]State]bool

func newTransitionSet(pairs ...[2]State) transitionSet {
	ts := make(transitionSet, len(pairs))
	for _, p := range pairs {
		ts[p] = true
	}
	return ts
}

// Legal reports whether (from, to) is a legal transition in ts. Every
// state may transition to Aborted, and Aborted always leads to
// Disconnected (§4.5: "* → ABORTED" and "ABORTED → DISCONNECTED").
func (ts transitionSet) Legal(from, to State) bool {
	if to == Aborted {
		return true
	}
	if from == Aborted && to == Disconnected {
		return true
	}
	return ts[[2]State{from, to}]
}

// ClientLegal is the client-receive legal transition table (§4.5,
// illustrative set made exhaustive here).
var ClientLegal = newTransitionSet(
	[2]State{Connected, RulesReceived},
	[2]State{RulesReceived, ChoosingName},
	[2]State{SentName, ChoosingName},
	[2]State{SentName, NotAcked},
	[2]State{Acked, Acked},
	[2]State{Acked, Guessing},
	[2]State{Acked, Finished},
	[2]State{AwaitingFeedback, GotFeedback},
	[2]State{GotFeedback, Guessing},
	[2]State{GotFeedback, Finished},
	[2]State{Finished, NotAcked},
	[2]State{Finished, Disconnected},
	[2]State{NotAcked, Disconnected},
)

// ServerLegal is the server-receive legal transition table (§4.5).
var ServerLegal = newTransitionSet(
	[2]State{None, Connected},
	[2]State{ChoosingName, SentName},
	[2]State{NotAcked, Acked},
	[2]State{Guessing, AwaitingFeedback},
)
