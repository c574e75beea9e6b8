package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("team not found")
	ErrInvalidTransition = errors.New("invalid state transition")
)
