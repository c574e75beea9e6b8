// Package app runs schedule-luck simulations over a validated score matrix.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/schedluck/internal/adapters/mq/queue"
	"github.com/okian/schedluck/internal/adapters/mq/worker"
	"github.com/okian/schedluck/internal/adapters/repository"
	"github.com/okian/schedluck/internal/domain/headtohead"
	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/record"
	"github.com/okian/schedluck/internal/domain/schedule"
	"github.com/okian/schedluck/internal/domain/scores"
	"github.com/okian/schedluck/pkg/logger"
	"github.com/okian/schedluck/pkg/metrics"
)

const defaultChunkSize = 1 << 16

// Simmer computes each focal team's record distribution over every
// ordering of its opponents.
type Simmer struct {
	matrix *scores.Matrix

	mode        Mode
	workerCount int
	chunkSize   uint64
	store       repository.Store
	runID       string
	middleware  func(worker.Runner) worker.Runner

	mu         sync.RWMutex
	running    bool
	startedAt  time.Time
	finishedAt time.Time

	logger logger.Logger
}

// New constructs a Simmer over matrix.
func New(matrix *scores.Matrix, opts ...Option) *Simmer {
	s := &Simmer{
		matrix:      matrix,
		mode:        ModeSequential,
		workerCount: runtime.NumCPU(),
		chunkSize:   defaultChunkSize,
		runID:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("simmer")
	}
	return s
}

// Matrix returns the score matrix being simulated.
func (s *Simmer) Matrix() *scores.Matrix { return s.matrix }

// Weeks returns the season length every record covers.
func (s *Simmer) Weeks() int { return s.matrix.Weeks() }

// SimulateAll runs every team in teams, in order. A nil or empty list means
// every team in the league. The focal list is validated before any work
// starts. Failed teams are reported as *TeamError values joined into the
// returned error; the map holds every team that finished.
func (s *Simmer) SimulateAll(ctx context.Context, teams []model.TeamID) (map[model.TeamID]record.Distribution, error) {
	if len(teams) == 0 {
		teams = s.matrix.Teams()
	}
	if err := s.validateFocal(teams); err != nil {
		return nil, err
	}

	s.begin()
	defer s.end()

	if err := s.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}
	for _, team := range teams {
		if err := s.store.SetState(ctx, team, repository.StatePending); err != nil {
			return nil, fmt.Errorf("mark %q pending: %w", team, err)
		}
	}
	s.publishStates(ctx)

	s.logger.Info(ctx, "simulation started",
		logger.String("run_id", s.runID),
		logger.String("mode", string(s.mode)),
		logger.Int("teams", len(teams)),
		logger.Int("league_size", s.matrix.Len()),
		logger.Int("weeks", s.matrix.Weeks()),
	)

	results := make(map[model.TeamID]record.Distribution, len(teams))
	var errs []error
	for _, team := range teams {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		dist, err := s.simulate(ctx, team)
		if err != nil {
			errs = append(errs, &TeamError{Team: team, Err: err})
			continue
		}
		results[team] = dist
	}

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Warn(ctx, "simulation finished with failures",
			logger.Int("aggregated", len(results)),
			logger.Error(err),
		)
	} else {
		s.logger.Info(ctx, "simulation finished", logger.Int("aggregated", len(results)))
	}
	return results, err
}

// SimulateTeam runs a single focal team.
func (s *Simmer) SimulateTeam(ctx context.Context, team model.TeamID) (record.Distribution, error) {
	results, err := s.SimulateAll(ctx, []model.TeamID{team})
	if err != nil {
		return record.Distribution{}, err
	}
	return results[team], nil
}

func (s *Simmer) validateFocal(teams []model.TeamID) error {
	seen := make(map[model.TeamID]struct{}, len(teams))
	for _, team := range teams {
		if _, dup := seen[team]; dup {
			return fmt.Errorf("%w: %q in focal list", scores.ErrDuplicateTeam, team)
		}
		seen[team] = struct{}{}
		if !s.matrix.Has(team) {
			return fmt.Errorf("%w: %q", ErrUnknownTeam, team)
		}
	}
	return nil
}

// simulate runs one team through enumerating to aggregated or failed.
func (s *Simmer) simulate(ctx context.Context, team model.TeamID) (dist record.Distribution, err error) {
	start := time.Now()
	teamField := logger.String("team", string(team))

	if err := s.store.SetState(ctx, team, repository.StateEnumerating); err != nil {
		return record.Distribution{}, err
	}
	s.publishStates(ctx)

	defer func() {
		if err == nil {
			return
		}
		metrics.RecordErrorByComponent("simmer", "team_failed")
		// The run context may be gone; the failure must still be recorded.
		if merr := s.store.MarkFailed(context.WithoutCancel(ctx), team, err); merr != nil {
			err = errors.Join(err, merr)
		}
		s.publishStates(context.WithoutCancel(ctx))
		s.logger.Error(ctx, "team failed", teamField, logger.Error(err))
	}()

	enum, err := schedule.New(team, s.matrix.Teams())
	if err != nil {
		return record.Distribution{}, err
	}
	expected := enum.Cardinality()
	s.logger.Debug(ctx, "enumerating",
		teamField,
		logger.Uint64("schedules", expected),
		logger.Int("opponents", len(enum.Opponents())),
	)

	if s.mode == ModeParallel {
		dist, err = s.runParallel(ctx, team, enum)
	} else {
		dist, err = s.runSequential(ctx, team, enum)
	}
	if err != nil {
		return record.Distribution{}, err
	}
	if got := dist.Total(); got != expected {
		return record.Distribution{}, fmt.Errorf("%w: merged %d, want %d", record.ErrCountMismatch, got, expected)
	}

	if err := s.store.SaveResult(ctx, team, dist); err != nil {
		return record.Distribution{}, err
	}
	s.publishStates(ctx)

	elapsed := time.Since(start)
	metrics.RecordTeamDuration(float64(elapsed.Milliseconds()))
	s.logger.Info(ctx, "team aggregated",
		teamField,
		logger.Uint64("schedules", expected),
		logger.Int("records", dist.Len()),
		logger.Duration("elapsed", elapsed),
	)
	return dist, nil
}

func (s *Simmer) runSequential(ctx context.Context, team model.TeamID, enum *schedule.Enumerator) (record.Distribution, error) {
	resolver := headtohead.New(s.matrix)
	agg := record.NewAggregator(resolver, record.WithProgress(metrics.RecordSchedulesEvaluated))
	dist, err := agg.Aggregate(ctx, team, enum.All(), s.matrix.Weeks(), enum.Cardinality())
	hits, misses, _ := resolver.Stats()
	metrics.RecordCacheStats(hits, misses)
	return dist, err
}

// runParallel partitions the rank space into ranges and aggregates them on
// a worker pool. Any failed range discards the whole team.
func (s *Simmer) runParallel(ctx context.Context, team model.TeamID, enum *schedule.Enumerator) (record.Distribution, error) {
	ranges := schedule.Partition(enum.Cardinality(), s.chunkSize)
	workers := min(s.workerCount, max(len(ranges), 1))

	q := queue.NewInMemoryQueue(queue.WithCapacity(2 * workers))
	merger := record.NewMerger()
	factory := func() worker.Runner {
		var r worker.Runner = newRangeRunner(enum, s.matrix)
		if s.middleware != nil {
			r = s.middleware(r)
		}
		return r
	}
	pool := worker.NewPool(workers, q, factory, mergeSink{merger: merger},
		worker.WithLogger(s.logger.Named("worker")))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		defer func() { _ = q.Close() }()
		for _, r := range ranges {
			if err := q.EnqueueWait(runCtx, queue.Job{Team: team, Range: r}); err != nil {
				return
			}
		}
	}()

	err := pool.Run(runCtx)
	cancel()
	<-dispatched
	if err != nil {
		return record.Distribution{}, err
	}
	s.logger.Debug(ctx, "ranges merged",
		logger.String("team", string(team)),
		logger.Int("ranges", merger.Parts()),
		logger.Int("workers", workers),
	)
	return merger.Result(), nil
}

func (s *Simmer) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.startedAt = time.Now()
	s.finishedAt = time.Time{}
}

func (s *Simmer) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.finishedAt = time.Now()
}

func (s *Simmer) publishStates(ctx context.Context) {
	counts, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "count team states", logger.Error(err))
		return
	}
	for state, n := range counts {
		if err := metrics.UpdateTeamsByState(string(state), n); err != nil {
			s.logger.Warn(ctx, "publish team state", logger.Error(err))
		}
	}
}
