// Package league reads and writes league documents and exposes them as a
// score source.
package league

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/okian/schedluck/internal/domain/model"
)

// TeamEntry is one team as written in a league file.
type TeamEntry struct {
	ID      string    `koanf:"id" yaml:"id"`
	Name    string    `koanf:"name" yaml:"name,omitempty"`
	Manager string    `koanf:"manager" yaml:"manager,omitempty"`
	Scores  []float64 `koanf:"scores" yaml:"scores,flow"`
}

// Document is the on-disk league format.
type Document struct {
	Name   string      `koanf:"league" yaml:"league"`
	Season int         `koanf:"season" yaml:"season,omitempty"`
	Teams  []TeamEntry `koanf:"teams" yaml:"teams"`
}

// League is a loaded league. It implements scores.Source; duplicate team ids
// are kept so the score matrix can reject them.
type League struct {
	doc   Document
	teams []model.TeamID
	index map[model.TeamID]int
	weeks int
}

// New validates doc and builds a League.
func New(doc Document) (*League, error) {
	if len(doc.Teams) == 0 {
		return nil, fmt.Errorf("%w: no teams", ErrInvalidLeague)
	}
	lg := &League{
		doc:   doc,
		teams: make([]model.TeamID, 0, len(doc.Teams)),
		index: make(map[model.TeamID]int, len(doc.Teams)),
	}
	for i, t := range doc.Teams {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: team %d has no id", ErrInvalidLeague, i+1)
		}
		id := model.TeamID(t.ID)
		lg.teams = append(lg.teams, id)
		if _, seen := lg.index[id]; !seen {
			lg.index[id] = i
		}
		lg.weeks = max(lg.weeks, len(t.Scores))
	}
	return lg, nil
}

// Load reads a league file through koanf.
func Load(ctx context.Context, path string) (*League, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no league file given", ErrInvalidLeague)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidLeague, path, err)
		}
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidLeague, path, err)
	}

	var doc Document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrInvalidLeague, path, err)
	}
	return New(doc)
}

// Save writes doc to path in the format Load reads.
func Save(path string, doc Document) error {
	out, err := yamlv3.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode league: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil { //nolint:gosec // league files are not secret
		return fmt.Errorf("write league %s: %w", path, err)
	}
	return nil
}

// Name returns the league name.
func (l *League) Name() string { return l.doc.Name }

// Season returns the season year, zero if unset.
func (l *League) Season() int { return l.doc.Season }

// Document returns the league as a writable document.
func (l *League) Document() Document {
	doc := l.doc
	doc.Teams = slices.Clone(l.doc.Teams)
	return doc
}

// Teams returns team ids in file order.
func (l *League) Teams() []model.TeamID { return slices.Clone(l.teams) }

// Score returns the team's points in a 1-based week.
func (l *League) Score(team model.TeamID, week int) (float64, bool) {
	i, ok := l.index[team]
	if !ok {
		return 0, false
	}
	scores := l.doc.Teams[i].Scores
	if week < 1 || week > len(scores) {
		return 0, false
	}
	return scores[week-1], true
}

// WeekCount returns the longest score list in the league.
func (l *League) WeekCount() int { return l.weeks }

// Team returns the display details of one team.
func (l *League) Team(id model.TeamID) (model.Team, bool) {
	i, ok := l.index[id]
	if !ok {
		return model.Team{}, false
	}
	t := l.doc.Teams[i]
	return model.Team{ID: id, Name: t.Name, Manager: t.Manager}, true
}
