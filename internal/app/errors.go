package app

import (
	"errors"
	"fmt"

	"github.com/okian/schedluck/internal/domain/model"
)

// ErrUnknownTeam is returned when a focal team is not in the league.
var ErrUnknownTeam = errors.New("unknown team")

// TeamError reports the failure of a single focal team. Other teams in the
// same run are unaffected.
type TeamError struct {
	Team model.TeamID
	Err  error
}

func (e *TeamError) Error() string {
	return fmt.Sprintf("team %q: %v", e.Team, e.Err)
}

func (e *TeamError) Unwrap() error { return e.Err }
