package scores

import (
	"slices"

	"github.com/okian/schedluck/internal/domain/model"
)

// MapSource is an in-memory Source, mainly used for tests and generated leagues.
type MapSource struct {
	order  []model.TeamID
	points map[model.TeamID][]float64
}

// NewMapSource creates an empty MapSource.
func NewMapSource() *MapSource {
	return &MapSource{points: make(map[model.TeamID][]float64)}
}

// Add appends a team with its weekly scores (week 1 first). Adding the same id
// twice keeps both entries in the order so validation can reject it.
func (s *MapSource) Add(team model.TeamID, points ...float64) *MapSource {
	s.order = append(s.order, team)
	s.points[team] = slices.Clone(points)
	return s
}

func (s *MapSource) Teams() []model.TeamID { return slices.Clone(s.order) }

func (s *MapSource) Score(team model.TeamID, week int) (float64, bool) {
	pts, ok := s.points[team]
	if !ok || week < 1 || week > len(pts) {
		return 0, false
	}
	return pts[week-1], true
}

// WeekCount returns the longest recorded season among the teams.
func (s *MapSource) WeekCount() int {
	n := 0
	for _, pts := range s.points {
		n = max(n, len(pts))
	}
	return n
}
