package league

import "errors"

// ErrInvalidLeague reports a league document that cannot be used.
var ErrInvalidLeague = errors.New("invalid league")
