package lifecycle

import (
	"context"

	"github.com/okian/duels/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithDisableHook sets a callback fired when a full load fails and the host
// is disabled.
func WithDisableHook(fn func(ctx context.Context, cause error)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.onDisable = fn
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}
