package client

import (
	"github.com/rawblock/mastermind-engine/internal/core"
	"github.com/rawblock/mastermind-engine/internal/protocol"
)

// Prompter is the client engine's only I/O boundary. Terminal
// rendering is out of scope per spec §1's non-goals; cmd/mm-client
// supplies the interactive implementation, and tests/automation can
// supply a fake.
type Prompter interface {
	// ReadGuess asks the human for the next guess when AutoPlay is off.
	ReadGuess(ctx *core.Context, m *core.Match) (core.Code, error)

	RenderRules(protocol.RulesPayload)
	RenderNameRejected()
	RenderRoster(names []string)
	RenderGuessResult(ctx *core.Context, guess core.Code, fb core.Feedback, waitingForOthers bool)
	RenderRoundEnd(ctx *core.Context, payload protocol.RoundEndPayload, names []string)
	RenderAborted(reason string)
}

// NullPrompter discards every render call and always guesses 0; it
// exists so AutoPlay-only callers (such as tests) don't need a real
// terminal implementation.
type NullPrompter struct{}

func (NullPrompter) ReadGuess(ctx *core.Context, m *core.Match) (core.Code, error) {
	return 0, nil
}
func (NullPrompter) RenderRules(protocol.RulesPayload)      {}
func (NullPrompter) RenderNameRejected()                    {}
func (NullPrompter) RenderRoster(names []string)             {}
func (NullPrompter) RenderGuessResult(ctx *core.Context, guess core.Code, fb core.Feedback, waitingForOthers bool) {
}
func (NullPrompter) RenderRoundEnd(ctx *core.Context, payload protocol.RoundEndPayload, names []string) {
}
func (NullPrompter) RenderAborted(reason string) {}
