// Command mm-server runs the Mastermind match server: it seats a
// fixed number of players over TCP, draws a fresh secret each round,
// and drives the protocol's server-receive transition table.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rawblock/mastermind-engine/internal/server"
)

var cli struct {
	Listen        string `help:"TCP address to listen on for players." default:":25567"`
	HTTP          string `help:"HTTP address for the admin API and spectator feed. Empty disables both." default:":7432"`
	Players       int    `help:"Number of seated players." default:"2"`
	Rounds        int    `help:"Number of rounds per game." default:"5"`
	Guesses       int    `help:"Max guesses per round before a loss." default:"10"`
	Slots         int    `help:"Code length." default:"4"`
	Colors        int    `help:"Number of colors per slot." default:"6"`
	Strategy      string `help:"Recommender strategy exposed to the admin API (minmax, minavg)." enum:"minmax,minavg" default:"minmax"`
	MaxTableBytes int64  `help:"Feedback-table memory cap in bytes; 0 uses the built-in default." default:"0"`
	RateLimit     int    `help:"Max connection attempts per minute per IP; 0 disables." default:"60"`
	RateBurst     int    `help:"Burst capacity for the connection rate limiter." default:"5"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("mm-server"),
		kong.Description("Mastermind match server"),
		kong.UsageOnError(),
	)

	cfg := server.Config{
		ListenAddr:      cli.Listen,
		HTTPAddr:        cli.HTTP,
		NumPlayers:      cli.Players,
		NumRounds:       cli.Rounds,
		MaxGuesses:      cli.Guesses,
		NumSlots:        cli.Slots,
		NumColors:       cli.Colors,
		Strategy:        cli.Strategy,
		MaxTableBytes:   cli.MaxTableBytes,
		RateLimitPerMin: cli.RateLimit,
		RateLimitBurst:  cli.RateBurst,
	}

	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mm-server: %v\n", err)
		os.Exit(2)
	}

	if err := srv.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "mm-server: %v\n", err)
		os.Exit(1)
	}
}
