// Package client implements the client-side session engine described
// in spec §4.7: connect, negotiate a name, and drive the protocol's
// client-receive transition table round after round.
package client

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rawblock/mastermind-engine/internal/core"
)

var validate = validator.New()

// Config is the client engine's connection and play-mode setup,
// populated by cmd/mm-client's kong flags.
type Config struct {
	ServerAddr string `validate:"required"`
	Name       string `validate:"required,max=31"`
	Strategy   string `validate:"omitempty,oneof=minmax minavg"`
	AutoPlay   bool   // if true, guesses come from core.Recommend instead of the Prompter
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}

func (c Config) strategy() core.Strategy {
	if c.Strategy == "minavg" {
		return core.MinAverage
	}
	return core.MinMax
}
