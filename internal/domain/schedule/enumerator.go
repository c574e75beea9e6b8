// Package schedule enumerates every opponent ordering for a focal team.
//
// Orderings are produced lexicographically over the input order of the
// opponents. Each ordering has a rank in [0, (N-1)!), and any rank can be
// unranked directly through the factorial number system, which lets workers
// start in the middle of the sequence.
package schedule

import (
	"fmt"
	"iter"
	"slices"

	"github.com/okian/schedluck/internal/domain/model"
)

// Schedule is one ordering of opponents for a focal team.
type Schedule []model.TeamID

// Enumerator produces the orderings of allTeams \ {focal}.
type Enumerator struct {
	focal     model.TeamID
	opponents []model.TeamID
	total     uint64
}

// New builds an Enumerator for focal. The relative order of allTeams fixes the
// enumeration order.
func New(focal model.TeamID, allTeams []model.TeamID) (*Enumerator, error) {
	seen := make(map[model.TeamID]struct{}, len(allTeams))
	opponents := make([]model.TeamID, 0, len(allTeams))
	found := false
	for _, t := range allTeams {
		if _, dup := seen[t]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTeam, t)
		}
		seen[t] = struct{}{}
		if t == focal {
			found = true
			continue
		}
		opponents = append(opponents, t)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFocal, focal)
	}
	total, err := Factorial(len(opponents))
	if err != nil {
		return nil, err
	}
	return &Enumerator{focal: focal, opponents: opponents, total: total}, nil
}

// Focal returns the team whose schedules are enumerated.
func (e *Enumerator) Focal() model.TeamID { return e.focal }

// Opponents returns a copy of the opponents in rank-0 order.
func (e *Enumerator) Opponents() []model.TeamID { return slices.Clone(e.opponents) }

// Cardinality returns the number of distinct orderings, (N-1)!.
func (e *Enumerator) Cardinality() uint64 { return e.total }

// All yields every ordering. See Range for buffer reuse.
func (e *Enumerator) All() iter.Seq[Schedule] {
	return e.Range(0, e.total)
}

// Range yields the orderings with ranks [start, start+count), clipped to the
// cardinality. The yielded Schedule is a reused buffer that is only valid until
// the next iteration; use slices.Clone to keep it. Every call to the returned
// sequence starts over from start.
func (e *Enumerator) Range(start, count uint64) iter.Seq[Schedule] {
	return func(yield func(Schedule) bool) {
		if start >= e.total || count == 0 {
			return
		}
		count = min(count, e.total-start)

		idx := unrank(len(e.opponents), start)
		buf := make(Schedule, len(idx))
		for n := uint64(0); n < count; n++ {
			for i, j := range idx {
				buf[i] = e.opponents[j]
			}
			if !yield(buf) {
				return
			}
			if !nextPermutation(idx) {
				return
			}
		}
	}
}

// Unrank returns a fresh copy of the ordering with the given rank.
func (e *Enumerator) Unrank(rank uint64) (Schedule, error) {
	if rank >= e.total {
		return nil, fmt.Errorf("%w: %d >= %d", ErrRankOutOfRange, rank, e.total)
	}
	idx := unrank(len(e.opponents), rank)
	out := make(Schedule, len(idx))
	for i, j := range idx {
		out[i] = e.opponents[j]
	}
	return out, nil
}

// Rank returns the lexicographic rank of s.
func (e *Enumerator) Rank(s Schedule) (uint64, error) {
	k := len(e.opponents)
	if len(s) != k {
		return 0, fmt.Errorf("%w: length %d, want %d", ErrNotASchedule, len(s), k)
	}
	pos := make(map[model.TeamID]int, k)
	for i, t := range e.opponents {
		pos[t] = i
	}
	used := make([]bool, k)
	var rank uint64
	for i, t := range s {
		p, ok := pos[t]
		if !ok || used[p] {
			return 0, fmt.Errorf("%w: unexpected %q", ErrNotASchedule, t)
		}
		smaller := 0
		for j := 0; j < p; j++ {
			if !used[j] {
				smaller++
			}
		}
		used[p] = true
		rank += uint64(smaller) * factorials[k-1-i]
	}
	return rank, nil
}

// unrank decodes rank into a permutation of [0, k) via its Lehmer code.
func unrank(k int, rank uint64) []int {
	pool := make([]int, k)
	for i := range pool {
		pool[i] = i
	}
	out := make([]int, 0, k)
	for i := k - 1; i >= 0; i-- {
		f := factorials[i]
		d := rank / f
		rank %= f
		out = append(out, pool[d])
		pool = slices.Delete(pool, int(d), int(d)+1)
	}
	return out
}

// nextPermutation advances p to its lexicographic successor in place and
// reports false once p was the last permutation.
func nextPermutation(p []int) bool {
	i := len(p) - 2
	for i >= 0 && p[i] >= p[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(p) - 1
	for p[j] <= p[i] {
		j--
	}
	p[i], p[j] = p[j], p[i]
	slices.Reverse(p[i+1:])
	return true
}
