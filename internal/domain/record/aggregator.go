package record

import (
	"context"
	"fmt"
	"iter"

	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/schedule"
)

// ProgressStride is how many schedules pass between context checks and
// progress callbacks.
const ProgressStride = 4096

// Resolver decides single-week matchups.
type Resolver interface {
	Resolve(a, b model.TeamID, week int) model.Outcome
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithProgress installs a callback that receives the number of schedules
// evaluated since the previous call, in coarse increments.
func WithProgress(fn func(delta uint64)) Option {
	return func(a *Aggregator) {
		a.progress = fn
	}
}

// Aggregator converts schedules into records for one focal team.
type Aggregator struct {
	resolver Resolver
	progress func(delta uint64)
}

// NewAggregator creates an Aggregator backed by resolver.
func NewAggregator(resolver Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{resolver: resolver}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate evaluates every schedule in schedules over weeks weeks and tallies
// the resulting records. Weeks past the schedule length wrap around to its
// start. The number of schedules consumed must equal expected; anything else
// is reported as ErrCountMismatch and the partial tally is dropped.
func (a *Aggregator) Aggregate(
	ctx context.Context,
	focal model.TeamID,
	schedules iter.Seq[schedule.Schedule],
	weeks int,
	expected uint64,
) (Distribution, error) {
	if weeks <= 0 {
		return Distribution{}, fmt.Errorf("%w: %d", ErrInvalidWeeks, weeks)
	}

	dist := NewDistribution()
	var seen, pending uint64
	for s := range schedules {
		if len(s) == 0 {
			return Distribution{}, fmt.Errorf("%w: focal %q", ErrNoOpponents, focal)
		}
		dist.Add(a.Record(focal, s, weeks), 1)
		seen++
		pending++
		if pending == ProgressStride {
			if err := ctx.Err(); err != nil {
				return Distribution{}, err
			}
			a.report(pending)
			pending = 0
		}
	}
	if err := ctx.Err(); err != nil {
		return Distribution{}, err
	}
	a.report(pending)

	if seen != expected {
		return Distribution{}, fmt.Errorf("%w: focal %q counted %d, want %d", ErrCountMismatch, focal, seen, expected)
	}
	return dist, nil
}

// Record plays focal through one schedule.
func (a *Aggregator) Record(focal model.TeamID, s schedule.Schedule, weeks int) model.Record {
	var r model.Record
	for w := 1; w <= weeks; w++ {
		opp := s[(w-1)%len(s)]
		switch a.resolver.Resolve(focal, opp, w).ForA() {
		case model.Win:
			r.Wins++
		case model.Loss:
			r.Losses++
		default:
			r.Ties++
		}
	}
	return r
}

func (a *Aggregator) report(n uint64) {
	if a.progress != nil && n > 0 {
		a.progress(n)
	}
}
