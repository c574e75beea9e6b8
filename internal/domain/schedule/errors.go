package schedule

import "errors"

// Sentinel kinds for enumeration errors.
var (
	ErrTooManyOpponents = errors.New("too many opponents to enumerate")
	ErrUnknownFocal     = errors.New("focal team not in team list")
	ErrDuplicateTeam    = errors.New("duplicate team in team list")
	ErrRankOutOfRange   = errors.New("rank out of range")
	ErrNotASchedule     = errors.New("not a schedule for this enumerator")
)
