package scores

import "errors"

// Sentinel kinds for score validation errors.
var (
	ErrMissingScore     = errors.New("missing score")
	ErrInvalidScore     = errors.New("invalid score")
	ErrInvalidWeekCount = errors.New("invalid week count")
	ErrDuplicateTeam    = errors.New("duplicate team")
	ErrTooFewTeams      = errors.New("too few teams")
	ErrTooManyTeams     = errors.New("too many teams")
)
