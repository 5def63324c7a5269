package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"checkers/engine"
	"checkers/experiments"
	"checkers/experiments/metrics"
	"checkers/game"
	"checkers/searcher/agent"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	red := flag.String("red", "mcts:iterations=800", "Red agent configuration")
	black := flag.String("black", "minimax:depth=6", "Black agent configuration")
	tournament := flag.String("tournament", "", "Semicolon separated agent configurations to play a round-robin tournament between")
	rounds := flag.Int("rounds", experiments.DefaultRounds, "Tournament rounds, each pairing plays both colors once per round")
	concurrency := flag.Int("concurrency", 1, "Tournament games played at once")
	size := flag.Int("size", game.DefaultSize, "Board size (4, 6 or 8)")
	maxPlies := flag.Int("max-plies", engine.MaxPlies, "Plies before a game is declared a draw")
	out := flag.String("out", "results", "Directory for tournament CSV files")
	verbose := flag.Bool("verbose", false, "Log every move and search decision")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if *tournament != "" {
		err = runTournament(ctx, strings.Split(*tournament, ";"), *out,
			experiments.WithRounds(*rounds),
			experiments.WithConcurrency(*concurrency),
			experiments.WithBoardSize(*size),
			experiments.WithMaxPlies(*maxPlies),
		)
	} else {
		err = runGame(ctx, *red, *black, *size, *maxPlies)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed")
	}
}

func runGame(ctx context.Context, redConfig, blackConfig string, size, maxPlies int) error {
	red, err := agent.New(redConfig)
	if err != nil {
		return err
	}
	black, err := agent.New(blackConfig)
	if err != nil {
		return err
	}

	e := engine.New(red, black,
		engine.WithStart(game.NewGame(game.WithSize(size))),
		engine.WithMaxPlies(maxPlies),
	)
	outcome, gameMetric, _, err := e.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s after %d plies (%s)\n", outcome, gameMetric.TotalMoves, gameMetric.Duration)
	return nil
}

func runTournament(ctx context.Context, configs []string, out string, options ...experiments.Option) error {
	result, err := experiments.RunTournament(ctx, configs, options...)
	if err != nil {
		return err
	}

	writer, err := metrics.NewWriter(out)
	if err != nil {
		return err
	}
	if err := result.Write(writer); err != nil {
		return err
	}

	for _, rating := range result.Ratings {
		fmt.Printf("%-40s %7.1f  %d-%d-%d\n", result.Agents[rating.Agent-1].Config, rating.Elo, rating.Wins, rating.Losses, rating.Draws)
	}
	log.Info().Msgf("results stored in %s", writer.Dir())
	return nil
}
