package record

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrCountMismatch = errors.New("schedule count mismatch")
	ErrNoOpponents   = errors.New("schedule has no opponents")
	ErrInvalidWeeks  = errors.New("invalid number of weeks")
)
