package app

import (
	"context"
	"time"

	"github.com/okian/schedluck/internal/adapters/repository"
	"github.com/okian/schedluck/internal/domain/model"
)

// Stats describes the simmer and its current run.
type Stats struct {
	RunID      string                   `json:"run_id"`
	Mode       Mode                     `json:"mode"`
	Workers    int                      `json:"workers"`
	ChunkSize  uint64                   `json:"chunk_size"`
	LeagueSize int                      `json:"league_size"`
	Weeks      int                      `json:"weeks"`
	Running    bool                     `json:"running"`
	StartedAt  time.Time                `json:"started_at,omitzero"`
	FinishedAt time.Time                `json:"finished_at,omitzero"`
	States     map[repository.State]int `json:"states"`
}

// GetStats returns run statistics for monitoring.
func (s *Simmer) GetStats(ctx context.Context) (Stats, error) {
	counts, err := s.store.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		RunID:      s.runID,
		Mode:       s.mode,
		Workers:    s.workerCount,
		ChunkSize:  s.chunkSize,
		LeagueSize: s.matrix.Len(),
		Weeks:      s.matrix.Weeks(),
		Running:    s.running,
		StartedAt:  s.startedAt,
		FinishedAt: s.finishedAt,
		States:     counts,
	}, nil
}

// Entry returns the stored state of one team.
func (s *Simmer) Entry(ctx context.Context, team model.TeamID) (repository.Entry, error) {
	return s.store.Get(ctx, team)
}

// Entries returns every team of the current run.
func (s *Simmer) Entries(ctx context.Context) ([]repository.Entry, error) {
	return s.store.List(ctx)
}
