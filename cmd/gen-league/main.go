package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/schedluck/internal/adapters/league"
	"github.com/okian/schedluck/internal/leaguegen"
	"github.com/okian/schedluck/pkg/logger"
)

// Default generator settings.
const (
	defaultTeams  = 10
	defaultWeeks  = 14
	defaultSeason = 2024
)

func main() {
	var (
		output = flag.String("output", "league.yaml", "File to write the generated league to")
		name   = flag.String("name", "generated", "League name")
		season = flag.Int("season", defaultSeason, "Season year")
		teams  = flag.Int("teams", defaultTeams, "Number of teams")
		weeks  = flag.Int("weeks", defaultWeeks, "Number of weeks")
		seed   = flag.Uint64("seed", 1, "Random seed; equal seeds give equal leagues")
		format = flag.String("log-format", "text", "Log format: text, json or console")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc, err := leaguegen.Generate(ctx, leaguegen.Config{
		Name:   *name,
		Season: *season,
		Teams:  *teams,
		Weeks:  *weeks,
		Seed:   *seed,
	})
	if err != nil {
		logger.Get().Error(ctx, "generate league", logger.Error(err))
		stop()
		os.Exit(1)
	}
	if err := league.Save(*output, doc); err != nil {
		logger.Get().Error(ctx, "save league", logger.Error(err))
		stop()
		os.Exit(1)
	}
	logger.Get().Info(ctx, "league written",
		logger.String("output", *output),
		logger.Int("teams", *teams),
		logger.Int("weeks", *weeks),
	)
}
