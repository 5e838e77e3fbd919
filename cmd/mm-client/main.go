// Command mm-client connects to a mm-server instance and plays one
// game, either interactively (reading guesses from stdin) or in
// AutoPlay mode (letting the recommender choose every guess).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rawblock/mastermind-engine/internal/client"
	"github.com/rawblock/mastermind-engine/internal/core"
	"github.com/rawblock/mastermind-engine/internal/protocol"
)

var cli struct {
	Server   string `arg:"" optional:"" default:"127.0.0.1:25567" help:"Server address, host:port."`
	Name     string `help:"Player name." default:"player"`
	Strategy string `help:"Recommender strategy when --auto is set (minmax, minavg)." enum:"minmax,minavg" default:"minmax"`
	Auto     bool   `help:"Let the recommender pick every guess instead of prompting."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("mm-client"),
		kong.Description("Mastermind game client"),
		kong.UsageOnError(),
	)

	cfg := client.Config{
		ServerAddr: cli.Server,
		Name:       cli.Name,
		Strategy:   cli.Strategy,
		AutoPlay:   cli.Auto,
	}

	eng, err := client.NewEngine(cfg, newTerminalPrompter())
	if err != nil {
		fmt.Fprintf(os.Stderr, "mm-client: %v\n", err)
		os.Exit(2)
	}

	if err := eng.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "mm-client: %v\n", err)
		os.Exit(1)
	}
}

// terminalPrompter is the default interactive client.Prompter: plain
// stdin/stdout, one guess per line as space- or comma-separated digits.
type terminalPrompter struct {
	in *bufio.Scanner
}

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{in: bufio.NewScanner(os.Stdin)}
}

func (p *terminalPrompter) ReadGuess(ctx *core.Context, m *core.Match) (core.Code, error) {
	for {
		fmt.Printf("guess (%d digits, 0-%d each): ", ctx.N, ctx.K-1)
		if !p.in.Scan() {
			return 0, fmt.Errorf("mm-client: stdin closed while awaiting a guess")
		}
		fields := strings.FieldsFunc(p.in.Text(), func(r rune) bool {
			return r == ' ' || r == ','
		})
		if len(fields) != ctx.N {
			fmt.Printf("expected %d digits, got %d\n", ctx.N, len(fields))
			continue
		}
		digits := make([]int, ctx.N)
		valid := true
		for i, f := range fields {
			d, err := strconv.Atoi(f)
			if err != nil || d < 0 || d >= ctx.K {
				fmt.Printf("digit %d (%q) must be an integer in [0, %d)\n", i, f, ctx.K)
				valid = false
				break
			}
			digits[i] = d
		}
		if !valid {
			continue
		}
		return ctx.EncodeDigits(digits), nil
	}
}

func (p *terminalPrompter) RenderRules(r protocol.RulesPayload) {
	fmt.Printf("rules: %d rounds, %d colors, %d slots, %d max guesses, %d players\n",
		r.NumRounds, r.NumColors, r.NumSlots, r.MaxGuesses, r.NumPlayers)
}

func (p *terminalPrompter) RenderNameRejected() {
	fmt.Println("that name is taken or invalid, trying another")
}

func (p *terminalPrompter) RenderRoster(names []string) {
	fmt.Printf("players: %s\n", strings.Join(names, ", "))
}

func (p *terminalPrompter) RenderGuessResult(ctx *core.Context, guess core.Code, fb core.Feedback, waitingForOthers bool) {
	fmt.Printf("%s -> %d bulls, %d cows", ctx.FormatCode(guess), fb.B, fb.W)
	if waitingForOthers {
		fmt.Print(" (waiting for other players)")
	}
	fmt.Println()
}

func (p *terminalPrompter) RenderRoundEnd(ctx *core.Context, payload protocol.RoundEndPayload, names []string) {
	if payload.Winner < 0 {
		fmt.Println("round over: nobody cracked the code")
		return
	}
	name := fmt.Sprintf("player %d", payload.Winner)
	if int(payload.Winner) < len(names) && names[payload.Winner] != "" {
		name = names[payload.Winner]
	}
	tie := ""
	if payload.WinBySpeedTie != 0 {
		tie = " (tie-break by speed)"
	}
	fmt.Printf("round over: %s wins%s\n", name, tie)
}

func (p *terminalPrompter) RenderAborted(reason string) {
	fmt.Printf("game aborted: %s\n", reason)
}
