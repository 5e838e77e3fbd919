package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SpectateHub is the spectator broadcast hub described in SPEC_FULL.md
// §11: a read-only JSON feed of round/guess events over websocket,
// adapted from the teacher's dashboard Hub with the same
// upgrade-then-fan-out shape.
type SpectateHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.Mutex
}

var spectateUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewSpectateHub returns an idle hub; call Run to start broadcasting.
func NewSpectateHub() *SpectateHub {
	return &SpectateHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, 256),
	}
}

// Run delivers queued events to every subscribed client. The broadcast
// channel is never closed, so Run does not return; it runs in its own
// goroutine for the lifetime of the process.
func (h *SpectateHub) Run() {
	for msg := range h.broadcast {
		h.mutex.Lock()
		for c := range h.clients {
			_ = c.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[spectate] write error: %v", err)
				c.Close()
				delete(h.clients, c)
			}
		}
		h.mutex.Unlock()
	}
}

// Subscribe upgrades a Gin request to a websocket and registers it as
// a spectator. Unauthenticated, per spec §1's networking non-goals.
func (h *SpectateHub) Subscribe(c *gin.Context) {
	conn, err := spectateUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[spectate] upgrade failed: %v", err)
		return
	}
	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()

	go func() {
		defer func() {
			h.mutex.Lock()
			delete(h.clients, conn)
			h.mutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type roundStartEvent struct {
	Type     string `json:"type"`
	Round    int    `json:"round"`
	NumSlots int    `json:"num_slots"`
}

type guessEvent struct {
	Type        string `json:"type"`
	PlayerIndex int    `json:"player_index"`
	PlayerName  string `json:"player_name"`
	Guess       string `json:"guess"`
	FeedbackIdx int    `json:"feedback_idx"`
}

type roundEndEvent struct {
	Type    string `json:"type"`
	Round   int    `json:"round"`
	Winner  int    `json:"winner"`
	BySpeed bool   `json:"win_by_speed_tie"`
}

func (h *SpectateHub) BroadcastRoundStart(round, numSlots int) {
	h.emit(roundStartEvent{Type: "round_start", Round: round, NumSlots: numSlots})
}

func (h *SpectateHub) BroadcastGuess(playerIndex int, playerName, guess string, feedbackIdx int) {
	h.emit(guessEvent{Type: "guess", PlayerIndex: playerIndex, PlayerName: playerName, Guess: guess, FeedbackIdx: feedbackIdx})
}

func (h *SpectateHub) BroadcastRoundEnd(round, winner int, bySpeed bool) {
	h.emit(roundEndEvent{Type: "round_end", Round: round, Winner: winner, BySpeed: bySpeed})
}

func (h *SpectateHub) emit(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[spectate] marshal error: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("[spectate] dropped event, broadcast channel full")
	}
}
