package record

import (
	"context"
	"sync"
)

// Merger combines partial distributions from concurrent workers.
type Merger struct {
	mu     sync.Mutex
	dist   Distribution
	merged int
}

// NewMerger creates an empty Merger.
func NewMerger() *Merger {
	return &Merger{dist: NewDistribution()}
}

// Merge folds part into the running total.
func (m *Merger) Merge(ctx context.Context, part Distribution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dist.Merge(part)
	m.merged++
	return nil
}

// Parts returns how many partial distributions were merged.
func (m *Merger) Parts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.merged
}

// Result returns a copy of the merged distribution.
func (m *Merger) Result() Distribution {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dist.Clone()
}
