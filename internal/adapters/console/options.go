package console

import "github.com/okian/duels/pkg/logger"

// Option applies a configuration option to the Console.
type Option func(*Console)

// WithName sets the name shown in success messages, e.g. "Duels v1.2.0".
func WithName(name string) Option {
	return func(c *Console) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger for the console.
func WithLogger(l logger.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}
