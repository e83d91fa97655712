// Package notice keeps user-visible messages for players until they are
// fetched or expire.
package notice

import (
	"context"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/google/uuid"
	"github.com/okian/duels/pkg/logger"
)

const (
	defaultTTL        = 5 * time.Minute
	defaultMaxPlayers = 10_000
	maxPerPlayer      = 20
)

// Notice is one pending message. Key names a localised message.
type Notice struct {
	Key     string    `json:"key"`
	Created time.Time `json:"created"`
}

// Option applies a configuration option to the Mailbox.
type Option func(*Mailbox)

// WithTTL sets how long undelivered notices are kept.
func WithTTL(ttl time.Duration) Option {
	return func(m *Mailbox) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithMaxPlayers bounds the number of players with pending notices.
// The least recently used mailbox is dropped first.
func WithMaxPlayers(n int) Option {
	return func(m *Mailbox) {
		if n > 0 {
			m.maxPlayers = n
		}
	}
}

// Mailbox stores notices per player.
type Mailbox struct {
	ttl        time.Duration
	maxPlayers int

	// guards read-modify-write of a player's list
	mu    sync.Mutex
	boxes cache.Cache[uuid.UUID, []Notice]

	now    func() time.Time
	logger logger.Logger
}

// NewMailbox creates an empty Mailbox.
func NewMailbox(opts ...Option) *Mailbox {
	m := &Mailbox{
		ttl:        defaultTTL,
		maxPlayers: defaultMaxPlayers,
		now:        time.Now,
		logger:     logger.Get().Named("notice"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.boxes = cache.NewCache[uuid.UUID, []Notice]().
		WithTTL(m.ttl).
		WithMaxKeys(m.maxPlayers).
		WithLRU()
	return m
}

// Send queues a notice for the player. Only the newest notices are kept.
func (m *Mailbox) Send(ctx context.Context, id uuid.UUID, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending, _ := m.boxes.Get(id)
	next := make([]Notice, 0, len(pending)+1)
	next = append(next, pending...)
	next = append(next, Notice{Key: key, Created: m.now()})
	if over := len(next) - maxPerPlayer; over > 0 {
		next = next[over:]
	}
	m.boxes.Set(id, next, 0)

	m.logger.Debug(ctx, "notice queued", logger.String("uuid", id.String()), logger.String("key", key))
}

// Drain returns and removes the player's pending notices, oldest first.
func (m *Mailbox) Drain(id uuid.UUID) []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending, ok := m.boxes.Get(id)
	if !ok {
		return []Notice{}
	}
	m.boxes.Invalidate(id)
	return pending
}

// Pending returns the number of players with undelivered notices.
func (m *Mailbox) Pending() int {
	m.boxes.DeleteExpired()
	return m.boxes.Len()
}
