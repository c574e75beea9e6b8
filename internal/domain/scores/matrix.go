// Package scores holds the immutable weekly score table the simulation runs on,
// together with the eager validation that guards it.
package scores

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/okian/schedluck/internal/domain/model"
)

// MaxTeams bounds the league size so that (N-1)! fits in a uint64.
const MaxTeams = 21

// Source is the data collaborator that supplies teams and weekly scores.
type Source interface {
	// Teams returns team ids in a stable order. Order only affects enumeration order.
	Teams() []model.TeamID
	// Score returns the points for team in week (1-based) and whether it exists.
	Score(team model.TeamID, week int) (float64, bool)
	// WeekCount returns the number of recorded weeks.
	WeekCount() int
}

// Matrix is a validated, read-only (team, week) -> points table.
// It is safe for concurrent reads.
type Matrix struct {
	teams  []model.TeamID
	index  map[model.TeamID]int
	points [][]float64
	weeks  int
}

// NewMatrix copies the first weeks weeks of src into a Matrix. A weeks value of
// zero selects every recorded week. All teams and weeks are checked up front so
// that no simulation work ever starts on incomplete data.
func NewMatrix(src Source, weeks int) (*Matrix, error) {
	available := src.WeekCount()
	if weeks == 0 {
		weeks = available
	}
	if weeks <= 0 || weeks > available {
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrInvalidWeekCount, weeks, available)
	}

	teams := slices.Clone(src.Teams())
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrTooFewTeams, len(teams))
	}
	if len(teams) > MaxTeams {
		return nil, fmt.Errorf("%w: at most %d supported, got %d", ErrTooManyTeams, MaxTeams, len(teams))
	}

	m := &Matrix{
		teams:  teams,
		index:  make(map[model.TeamID]int, len(teams)),
		points: make([][]float64, len(teams)),
		weeks:  weeks,
	}

	var errs []error
	for i, team := range teams {
		if _, dup := m.index[team]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTeam, team)
		}
		m.index[team] = i

		row := make([]float64, weeks)
		for w := 1; w <= weeks; w++ {
			pts, ok := src.Score(team, w)
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%w: team %q week %d", ErrMissingScore, team, w))
			case math.IsNaN(pts) || math.IsInf(pts, 0):
				errs = append(errs, fmt.Errorf("%w: team %q week %d: %v", ErrInvalidScore, team, w, pts))
			default:
				row[w-1] = pts
			}
		}
		m.points[i] = row
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// Teams returns a copy of the team ids in source order.
func (m *Matrix) Teams() []model.TeamID { return slices.Clone(m.teams) }

// Len returns the number of teams.
func (m *Matrix) Len() int { return len(m.teams) }

// Weeks returns the number of weeks in the season being simulated.
func (m *Matrix) Weeks() int { return m.weeks }

// Has reports whether team is part of the matrix.
func (m *Matrix) Has(team model.TeamID) bool {
	_, ok := m.index[team]
	return ok
}

// Score returns the points of team in week (1-based). Both must be valid for
// the matrix; callers in the hot loop rely on prior validation.
func (m *Matrix) Score(team model.TeamID, week int) float64 {
	return m.points[m.index[team]][week-1]
}

// Lookup is the checked variant of Score.
func (m *Matrix) Lookup(team model.TeamID, week int) (float64, error) {
	i, ok := m.index[team]
	if !ok || week < 1 || week > m.weeks {
		return 0, fmt.Errorf("%w: team %q week %d", ErrMissingScore, team, week)
	}
	return m.points[i][week-1], nil
}
