// Command mm-bench runs solver-vs-adaptive-maker simulations with no
// network I/O, the Go counterpart to the original project's quickie.c:
// it plays N games of the recommender against the adaptive code-maker
// and reports turn-count statistics.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rawblock/mastermind-engine/internal/core"
)

var cli struct {
	Colors     int    `help:"Number of colors per slot." default:"6"`
	Slots      int    `help:"Code length." default:"4"`
	MaxGuesses int    `help:"Max guesses per game before a loss." default:"10"`
	Games      int    `help:"Number of games to simulate." default:"100"`
	Strategy   string `help:"Recommender strategy (minmax, minavg)." enum:"minmax,minavg" default:"minmax"`
	Difficulty    int `help:"Adaptive difficulty band, 1 (easiest) to --difficulty-max (hardest)." default:"1"`
	DifficultyMax int `help:"Number of equal difficulty slices Difficulty is expressed against." default:"1"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("mm-bench"),
		kong.Description("Mastermind recommender-vs-adaptive-maker simulation"),
		kong.UsageOnError(),
	)

	strategy := core.MinMax
	if cli.Strategy == "minavg" {
		strategy = core.MinAverage
	}

	ctx, err := core.NewContext(core.Config{
		Colors:     cli.Colors,
		Slots:      cli.Slots,
		MaxGuesses: cli.MaxGuesses,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mm-bench: %v\n", err)
		os.Exit(2)
	}

	var wins, losses, totalTurns int
	worst := 0
	for i := 0; i < cli.Games; i++ {
		m := core.NewMatch(ctx, true)
		maker := core.NewAdaptiveMaker(ctx, strategy, cli.Difficulty, cli.DifficultyMax)

		for {
			guess, secret, err := maker.Next(m)
			if err != nil {
				fmt.Fprintf(os.Stderr, "mm-bench: adaptive maker: %v\n", err)
				os.Exit(1)
			}
			fb := ctx.Feedback(guess, secret)
			m.Constrain(guess, fb)
			if m.State() != core.Pending {
				break
			}
		}

		turns := m.TurnCount()
		totalTurns += turns
		if turns > worst {
			worst = turns
		}
		if m.State() == core.Won {
			wins++
		} else {
			losses++
		}
	}

	avg := float64(totalTurns) / float64(cli.Games)
	fmt.Printf("games=%d wins=%d losses=%d avg_turns=%.3f worst_turns=%d\n",
		cli.Games, wins, losses, avg, worst)
}
