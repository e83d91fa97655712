package leaderboard

import (
	"time"

	"github.com/okian/duels/pkg/logger"
)

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithSize sets how many rows each snapshot keeps, at most MaxSize.
func WithSize(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.size = min(n, MaxSize)
		}
	}
}

// WithRefreshInterval sets the age after which a snapshot is rebuilt.
func WithRefreshInterval(d time.Duration) Option {
	return func(b *Board) {
		if d > 0 {
			b.refresh = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}
