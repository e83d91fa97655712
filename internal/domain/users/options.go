package users

import (
	"context"
	"time"

	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/logger"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithCreateHook sets a callback run on the main executor when a record is
// created for a first-time player.
func WithCreateHook(fn func(ctx context.Context, u *model.User)) Option {
	return func(m *Manager) {
		if fn != nil {
			m.onCreate = fn
		}
	}
}

// WithMessenger sets where load-failure notices are sent.
func WithMessenger(msg Messenger) Option {
	return func(m *Manager) {
		if msg != nil {
			m.messenger = msg
		}
	}
}

// WithClock replaces time.Now for match timestamps and leaderboards.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}
