package app

import (
	"github.com/okian/schedluck/internal/adapters/mq/worker"
	"github.com/okian/schedluck/internal/adapters/repository"
	"github.com/okian/schedluck/pkg/logger"
)

// Mode selects how a team's orderings are evaluated.
type Mode string

// Simulation modes.
const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// Option applies a configuration option to the Simmer.
type Option func(*Simmer)

// WithMode sets sequential or parallel evaluation. Unknown modes are ignored.
func WithMode(mode Mode) Option {
	return func(s *Simmer) {
		if mode == ModeSequential || mode == ModeParallel {
			s.mode = mode
		}
	}
}

// WithWorkerCount sets the number of range workers in parallel mode.
func WithWorkerCount(count int) Option {
	return func(s *Simmer) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithChunkSize sets how many orderings one range covers.
func WithChunkSize(size uint64) Option {
	return func(s *Simmer) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithStore sets where team state and results are kept.
func WithStore(store repository.Store) Option {
	return func(s *Simmer) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the simmer.
func WithLogger(l logger.Logger) Option {
	return func(s *Simmer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunID sets the id reported by GetStats.
func WithRunID(id string) Option {
	return func(s *Simmer) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithRunnerMiddleware wraps every range runner in parallel mode.
func WithRunnerMiddleware(mw func(worker.Runner) worker.Runner) Option {
	return func(s *Simmer) {
		s.middleware = mw
	}
}
