package protocol

// Fixed-size wire payloads (§6). All widths are explicit and
// little-endian; there is no padding because every field is either a
// fixed-width integer or a fixed-size byte array, matching the
// packed-record discipline §9 requires in place of the reference
// implementation's native-struct transmission.

// RulesPayload follows a RULES_RECEIVED header.
type RulesPayload struct {
	PlayerID   uint8
	NumRounds  uint8
	MaxGuesses uint8
	NumSlots   uint8
	NumPlayers uint8
	NumColors  uint8
}

// NamePayload follows a SENT_NAME header: a null-padded name buffer.
type NamePayload struct {
	Name [NameBufLen]byte
}

// NameString decodes the buffer up to its first NUL byte.
func (p NamePayload) NameString() string {
	for i, b := range p.Name {
		if b == 0 {
			return string(p.Name[:i])
		}
	}
	return string(p.Name[:])
}

// NewNamePayload truncates and null-pads name to the fixed buffer.
func NewNamePayload(name string) NamePayload {
	var p NamePayload
	n := copy(p.Name[:NameBufLen-1], name)
	p.Name[n] = 0
	return p
}

// AckedNamesPayload follows the server's first ACKED broadcast of a
// game: a table of all seated players' names.
type AckedNamesPayload struct {
	Names [MaxNumPlayers][NameBufLen]byte
}

// GuessPayload follows an AWAITING_FEEDBACK header: the guessed code.
type GuessPayload struct {
	Code uint16
}

// MatchStateWire mirrors core.State across the wire without importing
// the core package into the protocol layer (protocol stays
// domain-agnostic besides the numeric code).
type MatchStateWire uint8

const (
	WirePending MatchStateWire = iota
	WireWon
	WireLost
)

// FeedbackPayload follows a GOT_FEEDBACK header.
type FeedbackPayload struct {
	FeedbackIdx      uint16
	MatchState       MatchStateWire
	Solution         uint16 // valid iff MatchState == WireLost
	WaitingForOthers uint8  // 0 or 1
}

// RoundEndPayload follows a NOT_ACKED header at the end of a round.
type RoundEndPayload struct {
	Winner        int8 // -1 if nobody won
	WinBySpeedTie uint8
	Points        [MaxNumPlayers]uint8
	Turns         [MaxNumPlayers]uint8
	Guesses       [MaxNumPlayers][MaxMaxGuesses]uint16
	Solution      uint16
}
