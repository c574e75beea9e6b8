// Package model contains domain values passed between layers.
package model

import "fmt"

// TeamID is an opaque, unique team identifier.
type TeamID string

// Team describes a league member. Only ID takes part in the simulation.
type Team struct {
	ID      TeamID
	Name    string
	Manager string
}

// Label returns the display name when known, falling back to the id.
func (t Team) Label() string {
	if t.Name == "" {
		return string(t.ID)
	}
	return t.Name
}

// MatchOutcome is a single-week result relative to a designated team.
type MatchOutcome int

const (
	Win MatchOutcome = iota
	Loss
	Tie
)

func (o MatchOutcome) String() string {
	switch o {
	case Win:
		return "WIN"
	case Loss:
		return "LOSS"
	case Tie:
		return "TIE"
	default:
		return fmt.Sprintf("MatchOutcome(%d)", int(o))
	}
}

// Outcome is the resolved head-to-head result between team A and team B.
// Exactly one field is true.
type Outcome struct {
	AWins bool
	BWins bool
	Tie   bool
}

// Mirror swaps the roles of A and B.
func (o Outcome) Mirror() Outcome {
	return Outcome{AWins: o.BWins, BWins: o.AWins, Tie: o.Tie}
}

// ForA returns the outcome from team A's point of view.
func (o Outcome) ForA() MatchOutcome {
	switch {
	case o.AWins:
		return Win
	case o.BWins:
		return Loss
	default:
		return Tie
	}
}

// Record is a season-long win/loss/tie triple.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Games returns wins+losses+ties.
func (r Record) Games() int { return r.Wins + r.Losses + r.Ties }

// Compare orders records by wins, then losses, then ties, ascending.
func (r Record) Compare(o Record) int {
	switch {
	case r.Wins != o.Wins:
		return cmpInt(r.Wins, o.Wins)
	case r.Losses != o.Losses:
		return cmpInt(r.Losses, o.Losses)
	default:
		return cmpInt(r.Ties, o.Ties)
	}
}

func (r Record) String() string {
	return fmt.Sprintf("(%d, %d, %d)", r.Wins, r.Losses, r.Ties)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
