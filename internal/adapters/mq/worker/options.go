// Package worker runs queued tasks on a fixed set of goroutines.
package worker

import (
	"github.com/okian/duels/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithPoolName sets the metrics label shared by a pool's workers.
func WithPoolName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.pool = name
		}
	}
}
