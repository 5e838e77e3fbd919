package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rawblock/mastermind-engine/internal/core"
)

var validate = validator.New()

// Config is the server engine's infra configuration — listen
// addresses and round/difficulty parameters — populated by
// cmd/mm-server's kong flags, never by the excluded interactive menu.
type Config struct {
	ListenAddr    string `validate:"required"`
	HTTPAddr      string // admin API + spectator websocket; empty disables both
	NumPlayers    int `validate:"required,gte=1,lte=4"`
	NumRounds     int `validate:"required,gte=1,lte=10"`
	MaxGuesses    int `validate:"required,gte=1,lte=20"`
	NumSlots      int `validate:"required,gte=1,lte=10"`
	NumColors     int `validate:"required,gte=2,lte=10"`
	Strategy      string `validate:"omitempty,oneof=minmax minavg"`
	MaxTableBytes int64
	RateLimitPerMin int
	RateLimitBurst  int
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	return nil
}

func (c Config) coreConfig() core.Config {
	return core.Config{
		Colors:        c.NumColors,
		Slots:         c.NumSlots,
		MaxGuesses:    c.MaxGuesses,
		MaxTableBytes: c.MaxTableBytes,
	}
}

func (c Config) strategy() core.Strategy {
	if c.Strategy == "minavg" {
		return core.MinAverage
	}
	return core.MinMax
}
