package server

import (
	"github.com/rawblock/mastermind-engine/internal/core"
	"github.com/rawblock/mastermind-engine/internal/protocol"
)

// roundResult computes the round winner per spec §4.6 step 7: the
// minimum turn count among round winners, tie-broken by finish order
// (first peer to send a winning guess), or -1 if nobody won.
func roundResult(peers []*Peer) (winner int, winBySpeedTie bool) {
	winner = -1
	bestTurns := -1
	tiedCount := 0

	for _, p := range peers {
		if p.Match == nil || p.Match.State() != core.Won {
			continue
		}
		turns := p.Match.TurnCount()
		switch {
		case bestTurns < 0 || turns < bestTurns:
			bestTurns = turns
			winner = p.Index
			tiedCount = 1
		case turns == bestTurns:
			tiedCount++
			if p.FinishOrder < peers[winner].FinishOrder {
				winner = p.Index
			}
		}
	}
	winBySpeedTie = tiedCount > 1
	return winner, winBySpeedTie
}

func allFinished(peers []*Peer) bool {
	for _, p := range peers {
		if p.Match == nil || p.Match.State() == core.Pending {
			return false
		}
	}
	return true
}

func allAcked(peers []*Peer) bool {
	for _, p := range peers {
		if p.State != protocol.Acked {
			return false
		}
	}
	return true
}

// buildAckedNames assembles the one-time seating table sent alongside
// the first round's ACKED broadcast.
func buildAckedNames(peers []*Peer) protocol.AckedNamesPayload {
	var out protocol.AckedNamesPayload
	for _, p := range peers {
		out.Names[p.Index] = protocol.NewNamePayload(p.Name).Name
	}
	return out
}

// buildRoundEndPayload assembles the NOT_ACKED summary broadcast at
// the close of a round: per-peer points, turn counts, and guess
// history, plus the revealed secret.
func buildRoundEndPayload(peers []*Peer, winner int, tie bool, secret core.Code) protocol.RoundEndPayload {
	out := protocol.RoundEndPayload{
		Winner:        int8(winner),
		WinBySpeedTie: boolToUint8(tie),
		Solution:      uint16(secret),
	}
	for _, p := range peers {
		out.Points[p.Index] = uint8(p.Points)
		if p.Match == nil {
			continue
		}
		out.Turns[p.Index] = uint8(p.Match.TurnCount())
		for t, turn := range p.Match.Turns {
			if t >= protocol.MaxMaxGuesses {
				break
			}
			out.Guesses[p.Index][t] = uint16(turn.Guess)
		}
	}
	return out
}
