// Package users is the in-memory cache of connected players' records.
//
// Records enter the cache when a player connects (or during the bootstrap
// scan after Load) and leave it when the player disconnects, at which point
// they are saved. Both maps use insert-if-absent so a record published by
// one path is never replaced by another.
package users

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/adapters/mq/scheduler"
	"github.com/okian/duels/internal/config"
	"github.com/okian/duels/internal/domain/leaderboard"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/internal/domain/rating"
	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
	"github.com/okian/duels/pkg/syncmap"
	"golang.org/x/sync/singleflight"
)

// ModuleName is the lifecycle name of the record store.
const ModuleName = "UserManager"

// NoticeLoadFailure is sent to a player whose record could not be read.
const NoticeLoadFailure = "ERROR.data.load-failure"

// params are the runtime settings read from config on Load.
type params struct {
	defaultRating    int
	matchesToDisplay int
	calc             *rating.Calculator
}

// Manager is the record store.
type Manager struct {
	exec      Executor
	repo      Repository
	kits      KitSource
	roster    Roster
	messenger Messenger
	cfg       func() *config.Config

	users *syncmap.Map[uuid.UUID, *model.User]
	names *syncmap.Map[string, uuid.UUID]
	loads singleflight.Group

	board  atomic.Pointer[leaderboard.Board]
	params atomic.Pointer[params]

	// ready is set once the bootstrap scan of the current load finished.
	ready atomic.Bool
	// gen changes on every Load and Unload so stale scans cannot set ready.
	gen atomic.Uint64

	taskMu  sync.Mutex
	topTask scheduler.TaskID
	hasTask bool

	onCreate func(ctx context.Context, u *model.User)
	now      func() time.Time
	logger   logger.Logger
}

// New creates a Manager. It holds no records until Load is called.
func New(exec Executor, repo Repository, kits KitSource, roster Roster, cfg func() *config.Config, opts ...Option) *Manager {
	m := &Manager{
		exec:     exec,
		repo:     repo,
		kits:     kits,
		roster:   roster,
		cfg:      cfg,
		users:    syncmap.New[uuid.UUID, *model.User](),
		names:    syncmap.New[string, uuid.UUID](),
		onCreate: func(context.Context, *model.User) {},
		now:      time.Now,
		logger:   logger.Get().Named("users"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.params.Store(&params{defaultRating: config.New().DefaultRating, calc: rating.NewCalculator()})
	m.board.Store(leaderboard.New(leaderboard.WithClock(m.now)))
	return m
}

// Name implements lifecycle.Loadable.
func (m *Manager) Name() string { return ModuleName }

// Get returns the cached record of the player last seen with name, ignoring case.
func (m *Manager) Get(name string) *model.User {
	id, ok := m.names.Load(strings.ToLower(name))
	if !ok {
		return nil
	}
	return m.GetByID(id)
}

// GetByID returns the cached record for id.
func (m *Manager) GetByID(id uuid.UUID) *model.User {
	u, _ := m.users.Load(id)
	return u
}

// GetPlayer returns the cached record of a connected player.
func (m *Manager) GetPlayer(p model.Player) *model.User {
	return m.GetByID(p.ID)
}

// Cached returns the number of cached records.
func (m *Manager) Cached() int { return m.users.Len() }

// Ready reports whether the bootstrap scan of the current load finished.
func (m *Manager) Ready() bool { return m.ready.Load() }

// TopWins returns the wins leaderboard, or nil before it is built.
func (m *Manager) TopWins() *leaderboard.TopEntry { return m.board.Load().TopWins() }

// TopLosses returns the losses leaderboard, or nil before it is built.
func (m *Manager) TopLosses() *leaderboard.TopEntry { return m.board.Load().TopLosses() }

// TopRating returns the rating leaderboard for kit, or nil.
func (m *Manager) TopRating(kit string) *leaderboard.TopEntry {
	return m.board.Load().TopRating(kit)
}

// LeaderboardKits returns the kits that currently have a rating leaderboard.
func (m *Manager) LeaderboardKits() []string { return m.board.Load().Kits() }

// RefreshInterval returns how long a leaderboard stays current.
func (m *Manager) RefreshInterval() time.Duration { return m.board.Load().RefreshInterval() }

// insert publishes u unless a record for its id is already cached, in which
// case the cached one wins. It returns the cached record and whether u was
// inserted.
func (m *Manager) insert(u *model.User) (*model.User, bool) {
	actual, loaded := m.users.LoadOrStore(u.ID(), u)
	if loaded {
		return actual, false
	}
	m.names.LoadOrStore(strings.ToLower(u.Name()), u.ID())
	metrics.UpdateUsersCached(m.users.Len())
	return u, true
}

// rename records name as the latest known name of u and points the index at it.
func (m *Manager) rename(u *model.User, name string) {
	if name == "" {
		return
	}
	id := u.ID()
	prev := u.SetName(name)
	if !strings.EqualFold(prev, name) {
		m.names.CompareAndDelete(strings.ToLower(prev), id)
	}
	m.names.Store(strings.ToLower(name), id)
}

func (m *Manager) apply(u *model.User) {
	p := m.params.Load()
	u.Apply(p.defaultRating, p.matchesToDisplay)
}

func lowerName(u *model.User) string {
	return strings.ToLower(u.Name())
}
