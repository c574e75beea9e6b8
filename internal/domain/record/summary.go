package record

import (
	"gonum.org/v1/gonum/stat"
)

// Summary describes the spread of wins across all schedules.
type Summary struct {
	Schedules  uint64  `json:"schedules"`
	MeanWins   float64 `json:"mean_wins"`
	StdDevWins float64 `json:"stddev_wins"`
	MinWins    int     `json:"min_wins"`
	MaxWins    int     `json:"max_wins"`
}

// Summarize computes count-weighted win statistics for d.
func Summarize(d Distribution) Summary {
	recs := d.Records()
	if len(recs) == 0 {
		return Summary{}
	}
	wins := make([]float64, len(recs))
	weights := make([]float64, len(recs))
	s := Summary{MinWins: recs[0].Record.Wins, MaxWins: recs[0].Record.Wins}
	for i, c := range recs {
		wins[i] = float64(c.Record.Wins)
		weights[i] = float64(c.Count)
		s.Schedules += c.Count
		s.MinWins = min(s.MinWins, c.Record.Wins)
		s.MaxWins = max(s.MaxWins, c.Record.Wins)
	}
	s.MeanWins = stat.Mean(wins, weights)
	if s.Schedules > 1 {
		s.StdDevWins = stat.PopStdDev(wins, weights)
	}
	return s
}
