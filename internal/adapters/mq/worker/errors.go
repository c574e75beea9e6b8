package worker

import "errors"

// ErrTaskFailure marks a range that panicked or errored. It aborts the team.
var ErrTaskFailure = errors.New("worker task failed")
