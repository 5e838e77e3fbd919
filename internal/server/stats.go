package server

// Stats is the snapshot exposed by the admin HTTP API's /stats
// endpoint, published after every dispatch-loop event.
type Stats struct {
	Round      int        `json:"round"`
	NumRounds  int        `json:"num_rounds"`
	GameOver   bool       `json:"game_over"`
	NumPlayers int        `json:"num_players"`
	Players    []PlayerStat `json:"players"`
}

type PlayerStat struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	State  string `json:"state"`
	Points int    `json:"points"`
}

func (s *Server) publishStats() {
	st := Stats{
		Round:      s.roundNum,
		NumRounds:  s.cfg.NumRounds,
		GameOver:   s.gameOver,
		NumPlayers: len(s.peers),
	}
	for _, p := range s.peers {
		if p == nil {
			continue
		}
		st.Players = append(st.Players, PlayerStat{
			Index:  p.Index,
			Name:   p.Name,
			State:  p.State.String(),
			Points: p.Points,
		})
	}
	s.stats.Store(&st)
}

// Snapshot returns the most recently published Stats, safe to call
// concurrently with the dispatch loop.
func (s *Server) Snapshot() *Stats {
	if v := s.stats.Load(); v != nil {
		return v.(*Stats)
	}
	return &Stats{}
}
