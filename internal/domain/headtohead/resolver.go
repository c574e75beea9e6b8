// Package headtohead resolves single-week matchups between two teams and
// memoizes the result for the lifetime of a resolver.
package headtohead

import (
	"github.com/okian/schedluck/internal/domain/model"
)

// Scores is the read-only score lookup the resolver compares.
type Scores interface {
	Score(team model.TeamID, week int) float64
}

// key identifies a physical matchup: the unordered pair plus the week.
// lo < hi always holds.
type key struct {
	lo, hi model.TeamID
	week   int
}

// Resolver compares weekly scores with exact ordering and caches every
// matchup it has seen. A Resolver is not safe for concurrent use; parallel
// workers each own one.
type Resolver struct {
	scores Scores
	cache  map[key]model.Outcome

	hits   uint64
	misses uint64
}

// New creates a Resolver with an empty cache.
func New(scores Scores) *Resolver {
	return &Resolver{
		scores: scores,
		cache:  make(map[key]model.Outcome),
	}
}

// Resolve returns the result of a playing b in week. Resolve(a, b, w) and
// Resolve(b, a, w) are always mirrors of each other.
func (r *Resolver) Resolve(a, b model.TeamID, week int) model.Outcome {
	if a > b {
		return r.resolveOrdered(b, a, week).Mirror()
	}
	return r.resolveOrdered(a, b, week)
}

func (r *Resolver) resolveOrdered(lo, hi model.TeamID, week int) model.Outcome {
	k := key{lo: lo, hi: hi, week: week}
	if out, ok := r.cache[k]; ok {
		r.hits++
		return out
	}
	r.misses++

	loPts := r.scores.Score(lo, week)
	hiPts := r.scores.Score(hi, week)
	out := model.Outcome{
		AWins: loPts > hiPts,
		BWins: loPts < hiPts,
		Tie:   loPts == hiPts,
	}
	r.cache[k] = out
	return out
}

// Stats reports cache hits, misses and the number of cached matchups.
func (r *Resolver) Stats() (hits, misses uint64, size int) {
	return r.hits, r.misses, len(r.cache)
}
