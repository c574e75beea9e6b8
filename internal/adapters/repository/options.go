package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/schedluck/pkg/logger"
)

type storeOptions struct {
	runID  string
	now    func() time.Time
	logger logger.Logger
}

func defaultOptions(component string) storeOptions {
	return storeOptions{
		runID:  uuid.NewString(),
		now:    time.Now,
		logger: logger.Get().Named(component),
	}
}

// Option configures a store.
type Option func(*storeOptions)

// WithRunID scopes SQLite rows to a run. Memory stores ignore it.
func WithRunID(id string) Option {
	return func(o *storeOptions) {
		if id != "" {
			o.runID = id
		}
	}
}

// WithClock sets the time source for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
