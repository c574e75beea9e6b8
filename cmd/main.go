package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/schedluck/internal/adapters/http/api"
	"github.com/okian/schedluck/internal/adapters/http/swagger"
	"github.com/okian/schedluck/internal/adapters/league"
	"github.com/okian/schedluck/internal/adapters/repository"
	app "github.com/okian/schedluck/internal/app"
	"github.com/okian/schedluck/internal/config"
	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/scores"
	"github.com/okian/schedluck/internal/report"
	"github.com/okian/schedluck/pkg/logger"
	"github.com/okian/schedluck/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	progressInterval  = 5 * time.Second
)

var collectorsOnce sync.Once //nolint:gochecknoglobals // runtime collectors register once per process

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Stderr.WriteString("schedluck: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

// flags holds command-line overrides. Only flags that were set replace the
// loaded configuration.
type flags struct {
	league  string
	weeks   int
	mode    string
	workers int
	teams   string
}

func parseFlags(args []string, stderr io.Writer) (flags, map[string]bool, error) {
	var f flags
	fs := flag.NewFlagSet("schedluck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.league, "league", "", "league YAML file (overrides league_file)")
	fs.IntVar(&f.weeks, "weeks", 0, "weeks to simulate, 0 for every recorded week")
	fs.StringVar(&f.mode, "mode", "", "sequential or parallel")
	fs.IntVar(&f.workers, "workers", 0, "parallel workers")
	fs.StringVar(&f.teams, "teams", "", "comma-separated focal team ids, empty for all")
	if err := fs.Parse(args); err != nil {
		return flags{}, nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

func applyFlags(cfg *config.Config, f flags, set map[string]bool) error {
	if set["league"] {
		cfg.LeagueFile = f.league
	}
	if set["weeks"] {
		cfg.Weeks = f.weeks
	}
	if set["mode"] {
		cfg.Mode = f.mode
	}
	if set["workers"] {
		cfg.WorkerCount = f.workers
	}
	return cfg.Validate()
}

func focalTeams(list string) []model.TeamID {
	var out []model.TeamID
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, model.TeamID(id))
		}
	}
	return out
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, set, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	// Initialize logging with defaults until the configured format is known.
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	// Load configuration (defaults -> optional file -> env -> flags)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, f, set); err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(stderr)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	lg, err := league.Load(ctx, cfg.LeagueFile)
	if err != nil {
		return err
	}
	matrix, err := scores.NewMatrix(lg, cfg.Weeks)
	if err != nil {
		return fmt.Errorf("league %s: %w", cfg.LeagueFile, err)
	}

	runID := uuid.NewString()
	store, closeStore, err := openStore(ctx, cfg, runID)
	if err != nil {
		return err
	}
	defer closeStore()

	sim := app.New(matrix,
		app.WithMode(app.Mode(cfg.Mode)),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithChunkSize(cfg.ChunkSize),
		app.WithStore(store),
		app.WithRunID(runID),
		app.WithLogger(log.Named("simmer")),
	)

	var srv *http.Server
	if cfg.Addr != "" {
		srv = startServer(ctx, cfg.Addr, sim)
		defer shutdownServer(ctx, srv)
	}

	progressCtx, stopProgress := context.WithCancel(ctx)
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		startProgressLogger(progressCtx, sim, progressInterval)
	}()

	teams := focalTeams(f.teams)
	results, simErr := sim.SimulateAll(ctx, teams)
	stopProgress()
	<-progressDone

	if len(teams) == 0 {
		teams = matrix.Teams()
	}
	failures := teamFailures(simErr)
	for _, id := range teams {
		team, ok := lg.Team(id)
		if !ok {
			team = model.Team{ID: id}
		}
		if dist, ok := results[id]; ok {
			if err := report.Write(stdout, team, dist, matrix.Weeks()); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			continue
		}
		if cause, ok := failures[id]; ok {
			if err := report.WriteFailure(stdout, team, cause); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}
	}

	if srv != nil && cfg.Linger > 0 {
		log.Info(ctx, "results available over HTTP", logger.String("addr", cfg.Addr), logger.Duration("linger", cfg.Linger))
		select {
		case <-ctx.Done():
		case <-time.After(cfg.Linger):
		}
	}
	return simErr
}

// openStore picks the SQLite store when a database path is configured.
func openStore(ctx context.Context, cfg *config.Config, runID string) (repository.Store, func(), error) {
	if cfg.DatabasePath == "" {
		return repository.NewMemoryStore(repository.WithRunID(runID)), func() {}, nil
	}
	db, err := repository.NewSQLiteStore(ctx, cfg.DatabasePath, repository.WithRunID(runID))
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Get().Error(ctx, "close store", logger.Error(err))
		}
	}, nil
}

// teamFailures indexes the per-team errors joined into a SimulateAll error.
func teamFailures(err error) map[model.TeamID]error {
	out := map[model.TeamID]error{}
	if err == nil {
		return out
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var te *app.TeamError
		if errors.As(e, &te) {
			out[te.Team] = te.Err
		}
	}
	return out
}

func registerRuntimeCollectors() {
	collectorsOnce.Do(func() {
		reg := metrics.GetRegistry()
		_ = reg.Register(collectors.NewGoCollector())
		_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

func newMux(ctx context.Context, sim *app.Simmer) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(sim).Register(ctx, mux)
	return mux
}

func startServer(ctx context.Context, addr string, sim *app.Simmer) *http.Server {
	registerRuntimeCollectors()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(ctx, sim),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Get().Info(ctx, "starting HTTP server", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Error(ctx, "HTTP server failed", logger.Error(err))
		}
	}()
	return srv
}

func shutdownServer(ctx context.Context, srv *http.Server) {
	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error(ctx, "server shutdown failed", logger.Error(err))
	}
	logger.Get().Info(ctx, "server stopped")
}

// startProgressLogger logs run progress until ctx is done.
func startProgressLogger(ctx context.Context, sim *app.Simmer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logProgress(ctx, sim)
		}
	}
}

func logProgress(ctx context.Context, sim *app.Simmer) {
	stats, err := sim.GetStats(ctx)
	if err != nil {
		return
	}
	logger.Get().Info(ctx, "progress",
		logger.Int("pending", stats.States[repository.StatePending]),
		logger.Int("enumerating", stats.States[repository.StateEnumerating]),
		logger.Int("aggregated", stats.States[repository.StateAggregated]),
		logger.Int("failed", stats.States[repository.StateFailed]),
	)
}
