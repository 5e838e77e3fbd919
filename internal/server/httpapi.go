package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewHTTPRouter builds the admin/observability API described in
// SPEC_FULL.md §11: health, live stats, and the effective config, all
// unauthenticated per spec §1's networking non-goals. Adapted from the
// teacher's SetupRouter grouping, minus auth middleware and the
// Bitcoin-domain route tree.
func (s *Server) NewHTTPRouter() *gin.Engine {
	r := gin.Default()

	pub := r.Group("/api/v1")
	{
		pub.GET("/healthz", s.handleHealthz)
		pub.GET("/stats", s.handleStats)
		pub.GET("/config", s.handleConfig)
		pub.GET("/spectate", func(c *gin.Context) { s.spectate.Subscribe(c) })
	}
	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Snapshot())
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"num_players": s.cfg.NumPlayers,
		"num_rounds":  s.cfg.NumRounds,
		"max_guesses": s.cfg.MaxGuesses,
		"num_slots":   s.cfg.NumSlots,
		"num_colors":  s.cfg.NumColors,
		"strategy":    s.cfg.Strategy,
	})
}
