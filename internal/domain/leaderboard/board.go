package leaderboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
)

const (
	// MaxSize is the largest number of rows a snapshot holds.
	MaxSize        = 10
	defaultRefresh = time.Minute
)

type ratings = map[string]*TopEntry

// Board holds the published wins, losses and per-kit rating snapshots.
// Readers never block; a rebuild replaces a snapshot with one pointer swap.
type Board struct {
	size    int
	refresh time.Duration
	now     func() time.Time

	wins    atomic.Pointer[TopEntry]
	losses  atomic.Pointer[TopEntry]
	ratings atomic.Pointer[ratings]

	// serialises rebuild passes; readers do not take it
	mu sync.Mutex

	logger logger.Logger
}

// New creates an empty Board.
func New(opts ...Option) *Board {
	b := &Board{
		size:    MaxSize,
		refresh: defaultRefresh,
		now:     time.Now,
		logger:  logger.Get().Named("leaderboard"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ratings.Store(&ratings{})
	return b
}

// RefreshInterval returns the configured snapshot lifetime.
func (b *Board) RefreshInterval() time.Duration { return b.refresh }

// TopWins returns the wins snapshot, or nil before the first build.
func (b *Board) TopWins() *TopEntry { return b.wins.Load() }

// TopLosses returns the losses snapshot, or nil before the first build.
func (b *Board) TopLosses() *TopEntry { return b.losses.Load() }

// TopRating returns the rating snapshot for kit, or nil if none is published.
func (b *Board) TopRating(kit string) *TopEntry {
	return (*b.ratings.Load())[kit]
}

// Kits returns the kits with a published rating snapshot.
func (b *Board) Kits() []string {
	m := *b.ratings.Load()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Update runs one aggregation pass over users for the given live kits.
// Stale or missing snapshots are rebuilt; rating snapshots of kits that are
// no longer live are evicted. A failure in one metric is logged and that
// metric is retried on the next pass.
func (b *Board) Update(ctx context.Context, users []*model.User, kits []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	if b.wins.Load().stale(now, b.refresh) {
		if e, ok := b.build(ctx, IdentifierWins, "", "Wins", now, users, (*model.User).Wins); ok {
			b.wins.Store(e)
		}
	}
	if b.losses.Load().stale(now, b.refresh) {
		if e, ok := b.build(ctx, IdentifierLosses, "", "Losses", now, users, (*model.User).Losses); ok {
			b.losses.Store(e)
		}
	}

	current := *b.ratings.Load()
	next := make(ratings, len(kits))
	changed := len(current) != len(kits)
	for _, kit := range kits {
		entry := current[kit]
		if entry.stale(now, b.refresh) {
			value := func(u *model.User) int { return u.Rating(kit) }
			if e, ok := b.build(ctx, IdentifierRating, kit, kit, now, users, value); ok {
				entry = e
				changed = true
			}
		}
		if entry != nil {
			next[kit] = entry
		}
	}
	for kit := range current {
		if _, live := next[kit]; !live {
			changed = true
		}
	}
	if changed {
		b.ratings.Store(&next)
	}
	metrics.UpdateLeaderboardKits(len(next))
}

// build projects users to rows and keeps the top b.size, highest first.
func (b *Board) build(
	ctx context.Context,
	identifier, kit, typ string,
	now time.Time,
	users []*model.User,
	value func(*model.User) int,
) (entry *TopEntry, ok bool) {
	label := identifier
	if kit != "" {
		label = identifier + ":" + kit
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordLeaderboardError(label)
			b.logger.Error(ctx, "leaderboard rebuild failed",
				logger.String("metric", label),
				logger.Error(fmt.Errorf("panic: %v", r)),
			)
			entry, ok = nil, false
		}
	}()

	rows := make([]Pair, 0, len(users))
	for _, u := range users {
		rows = append(rows, Pair{Name: u.Name(), Value: value(u)})
	}
	slices.SortStableFunc(rows, func(a, b Pair) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})
	if len(rows) > b.size {
		rows = slices.Clip(rows[:b.size])
	}

	metrics.RecordLeaderboardRebuild(label, float64(time.Since(start).Microseconds())/1000)
	return &TopEntry{
		Kit:        kit,
		Type:       typ,
		Identifier: identifier,
		Entries:    rows,
		Created:    now,
	}, true
}
