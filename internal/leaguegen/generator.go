// Package leaguegen builds synthetic leagues for demos and load runs.
package leaguegen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/schedluck/internal/adapters/league"
	"github.com/okian/schedluck/internal/domain/scores"
	"github.com/okian/schedluck/pkg/logger"
)

// ErrInvalidSize is returned when the requested league cannot be simulated.
var ErrInvalidSize = errors.New("invalid league size")

// Score tiers. Each team is assigned one for the whole season so the
// generated league has strong and weak sides.
const (
	tierAverage = iota
	tierStrong
	tierWeak
	tierElite
	tierVolatile
	tierCount
)

const (
	averageBase    = 95.0
	averageSpread  = 40.0
	strongBase     = 110.0
	strongSpread   = 35.0
	weakBase       = 75.0
	weakSpread     = 35.0
	eliteBase      = 125.0
	eliteSpread    = 30.0
	volatileBase   = 60.0
	volatileSpread = 90.0
	idLength       = 8
)

var managers = []string{ //nolint:gochecknoglobals // fixed name pool
	"ana", "bruno", "chen", "dara", "eli", "femi", "gus", "hana",
	"ivo", "jun", "kai", "lena", "milo", "nia", "omar", "pia",
	"quinn", "rui", "sol", "teo", "uma",
}

// Config describes the league to generate.
type Config struct {
	Name   string
	Season int
	Teams  int
	Weeks  int
	Seed   uint64
}

// Generate builds a league document. The same config always yields the same
// document.
func Generate(ctx context.Context, cfg Config) (league.Document, error) {
	if cfg.Teams < 2 || cfg.Teams > scores.MaxTeams {
		return league.Document{}, fmt.Errorf("%w: %d teams, want 2..%d", ErrInvalidSize, cfg.Teams, scores.MaxTeams)
	}
	if cfg.Weeks < 1 {
		return league.Document{}, fmt.Errorf("%w: %d weeks", ErrInvalidSize, cfg.Weeks)
	}

	var seed [32]byte
	for i := range 4 {
		v := cfg.Seed + uint64(i)
		for j := range 8 {
			seed[i*8+j] = byte(v >> (8 * j))
		}
	}
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	doc := league.Document{
		Name:   cfg.Name,
		Season: cfg.Season,
		Teams:  make([]league.TeamEntry, 0, cfg.Teams),
	}
	seen := make(map[string]struct{}, cfg.Teams)
	for i := range cfg.Teams {
		if err := ctx.Err(); err != nil {
			return league.Document{}, err
		}
		id, err := teamID(src, seen)
		if err != nil {
			return league.Document{}, err
		}
		tier := rng.IntN(tierCount)
		scores := make([]float64, cfg.Weeks)
		for w := range scores {
			scores[w] = weeklyScore(rng, tier)
		}
		doc.Teams = append(doc.Teams, league.TeamEntry{
			ID:      id,
			Name:    "Team " + strconv.Itoa(i+1),
			Manager: managers[i%len(managers)],
			Scores:  scores,
		})
	}

	logger.Get().Debug(ctx, "generated league",
		logger.String("league", cfg.Name),
		logger.Int("teams", cfg.Teams),
		logger.Int("weeks", cfg.Weeks),
		logger.Uint64("seed", cfg.Seed),
	)
	return doc, nil
}

// teamID draws a short id from a seeded UUID, retrying on prefix collisions.
func teamID(src *rand.ChaCha8, seen map[string]struct{}) (string, error) {
	for {
		u, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return "", fmt.Errorf("team id: %w", err)
		}
		id := u.String()[:idLength]
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		return id, nil
	}
}

func weeklyScore(rng *rand.Rand, tier int) float64 {
	var base, spread float64
	switch tier {
	case tierStrong:
		base, spread = strongBase, strongSpread
	case tierWeak:
		base, spread = weakBase, weakSpread
	case tierElite:
		base, spread = eliteBase, eliteSpread
	case tierVolatile:
		base, spread = volatileBase, volatileSpread
	default:
		base, spread = averageBase, averageSpread
	}
	return math.Round((base+rng.Float64()*spread)*100) / 100
}
