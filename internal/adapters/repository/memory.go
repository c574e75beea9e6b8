package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/record"
	"github.com/okian/schedluck/pkg/metrics"
)

// MemoryStore keeps state in process. It is safe for concurrent use.
type MemoryStore struct {
	opts storeOptions

	mu      sync.RWMutex
	entries map[model.TeamID]*Entry
	order   []model.TeamID
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions("memory-store")
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{opts: o, entries: make(map[model.TeamID]*Entry)}
}

// Reset forgets every team.
func (s *MemoryStore) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[model.TeamID]*Entry)
	s.order = nil
	return nil
}

// SetState moves team to state.
func (s *MemoryStore) SetState(ctx context.Context, team model.TeamID, state State) error {
	if err := checkSettable(team, state); err != nil {
		return err
	}
	return s.transition(ctx, team, state, func(e *Entry) {})
}

// SaveResult stores dist and marks team aggregated.
func (s *MemoryStore) SaveResult(ctx context.Context, team model.TeamID, dist record.Distribution) error {
	return s.transition(ctx, team, StateAggregated, func(e *Entry) {
		e.Distribution = dist.Clone()
	})
}

// MarkFailed marks team failed.
func (s *MemoryStore) MarkFailed(ctx context.Context, team model.TeamID, cause error) error {
	if cause == nil {
		cause = errors.New("unknown failure")
	}
	return s.transition(ctx, team, StateFailed, func(e *Entry) {
		e.Err = cause.Error()
	})
}

func (s *MemoryStore) transition(ctx context.Context, team model.TeamID, to State, apply func(*Entry)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[team]
	var from State
	if ok {
		from = e.State
	}
	if err := checkTransition(team, from, to); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_transition")
		return err
	}
	if !ok {
		e = &Entry{Team: team}
		s.entries[team] = e
		s.order = append(s.order, team)
	}
	e.State = to
	e.UpdatedAt = s.opts.now()
	apply(e)
	metrics.RecordStoreWrite()
	return nil
}

// Get returns one team.
func (s *MemoryStore) Get(ctx context.Context, team model.TeamID) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[team]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("%w: %q", ErrNotFound, team)
	}
	return copyEntry(e), nil
}

// List returns every team in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.order))
	for _, team := range s.order {
		out = append(out, copyEntry(s.entries[team]))
	}
	return out, nil
}

// Count returns the number of teams per state.
func (s *MemoryStore) Count(ctx context.Context) (map[State]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[State]int, len(States))
	for _, st := range States {
		counts[st] = 0
	}
	for _, e := range s.entries {
		counts[e.State]++
	}
	return counts, nil
}

func copyEntry(e *Entry) Entry {
	out := *e
	if e.Distribution.Len() > 0 {
		out.Distribution = e.Distribution.Clone()
	}
	return out
}
