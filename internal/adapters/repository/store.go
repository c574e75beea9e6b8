// Package repository stores per-team simulation state and results.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/record"
)

// State is where a team is in its simulation lifecycle.
type State string

// Team states. Aggregated and Failed are terminal.
const (
	StatePending     State = "pending"
	StateEnumerating State = "enumerating"
	StateAggregated  State = "aggregated"
	StateFailed      State = "failed"
)

// States lists every state in lifecycle order.
var States = []State{StatePending, StateEnumerating, StateAggregated, StateFailed}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool { return s == StateAggregated || s == StateFailed }

// transitions maps a state to the states it may move to. The empty state is
// a team the store has not seen yet.
var transitions = map[State][]State{
	"":               {StatePending},
	StatePending:     {StateEnumerating, StateFailed},
	StateEnumerating: {StateAggregated, StateFailed},
}

func checkTransition(team model.TeamID, from, to State) error {
	for _, s := range transitions[from] {
		if s == to {
			return nil
		}
	}
	if from == "" {
		return fmt.Errorf("%w: %q: unknown team cannot become %s", ErrNotFound, team, to)
	}
	return fmt.Errorf("%w: %q: %s -> %s", ErrInvalidTransition, team, from, to)
}

// checkSettable rejects terminal states, which carry a payload and have
// dedicated methods.
func checkSettable(team model.TeamID, state State) error {
	if state.Terminal() {
		return fmt.Errorf("%w: %q: %s is set by its own method", ErrInvalidTransition, team, state)
	}
	return nil
}

// Entry is the stored view of one team.
type Entry struct {
	Team  model.TeamID `json:"team"`
	State State        `json:"state"`
	// Distribution is set only for aggregated teams.
	Distribution record.Distribution `json:"-"`
	Err          string              `json:"error,omitempty"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Store provides read/write access to simulation state.
type Store interface {
	// Reset forgets every team.
	Reset(ctx context.Context) error

	// SetState moves team to state. Unknown teams may only become pending.
	// Returns ErrInvalidTransition for any move the lifecycle forbids.
	SetState(ctx context.Context, team model.TeamID, state State) error

	// SaveResult stores the distribution and marks team aggregated.
	SaveResult(ctx context.Context, team model.TeamID, dist record.Distribution) error

	// MarkFailed marks team failed with the cause.
	MarkFailed(ctx context.Context, team model.TeamID, cause error) error

	// Get returns one team. Returns ErrNotFound if the team is unknown.
	Get(ctx context.Context, team model.TeamID) (Entry, error)

	// List returns every team in the order it was first marked pending.
	List(ctx context.Context) ([]Entry, error)

	// Count returns the number of teams per state.
	Count(ctx context.Context) (map[State]int, error)
}
