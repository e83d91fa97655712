package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/adapters/repository"
	"github.com/okian/duels/internal/domain/leaderboard"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/internal/domain/rating"
	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
)

// Load reads settings from config, resets the leaderboards, schedules the
// bootstrap scan of the records folder and starts the leaderboard task.
func (m *Manager) Load(ctx context.Context) error {
	cfg := m.cfg()

	matches := cfg.MatchesToDisplay
	if matches < 0 {
		matches = 0
	}
	m.params.Store(&params{
		defaultRating:    cfg.DefaultRating,
		matchesToDisplay: matches,
		calc:             rating.NewCalculator(rating.WithKFactor(cfg.RatingKFactor)),
	})
	m.board.Store(leaderboard.New(
		leaderboard.WithSize(cfg.TopSize),
		leaderboard.WithRefreshInterval(cfg.TopRefreshInterval),
		leaderboard.WithClock(m.now),
		leaderboard.WithLogger(m.logger.Named("top")),
	))
	metrics.UpdateLeaderboardKits(0)

	m.ready.Store(false)
	gen := m.gen.Add(1)

	if err := m.exec.Async("users.bootstrap", func(ctx context.Context) { m.bootstrap(ctx, gen) }); err != nil {
		return fmt.Errorf("scheduling bootstrap: %w", err)
	}

	id, err := m.exec.SyncRepeat("users.top", m.topTick, cfg.TopInitialDelay, cfg.TopPeriod)
	if err != nil {
		return fmt.Errorf("scheduling leaderboard task: %w", err)
	}
	m.taskMu.Lock()
	m.topTask, m.hasTask = id, true
	m.taskMu.Unlock()

	m.logger.Info(ctx, "user manager loaded",
		logger.Int("default_rating", cfg.DefaultRating),
		logger.Int("matches_to_display", matches),
	)
	return nil
}

// Unload stops the leaderboard task, saves the record of every connected
// player and empties the cache. Saving runs on the caller's goroutine.
func (m *Manager) Unload(ctx context.Context) error {
	m.taskMu.Lock()
	if m.hasTask {
		m.exec.Cancel(m.topTask)
		m.hasTask = false
	}
	m.taskMu.Unlock()

	m.ready.Store(false)
	m.gen.Add(1)

	saved, failed := 0, 0
	for _, p := range m.roster.Online() {
		u, ok := m.users.LoadAndDelete(p.ID)
		if !ok {
			continue
		}
		if err := m.save(ctx, u); err != nil {
			failed++
			continue
		}
		saved++
	}

	m.users.Clear()
	m.names.Clear()
	metrics.UpdateUsersCached(0)

	m.logger.Info(ctx, "user manager unloaded", logger.Int("saved", saved), logger.Int("failed", failed))
	return nil
}

// bootstrap caches every stored record that is not cached yet. Unreadable
// files are logged and skipped.
func (m *Manager) bootstrap(ctx context.Context, gen uint64) {
	ids, err := m.repo.IDs(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("users", "bootstrap")
		m.logger.Error(ctx, "listing records failed", logger.Error(err))
	}

	loaded := 0
	for _, id := range ids {
		if m.gen.Load() != gen {
			return
		}
		if _, cached := m.users.Load(id); cached {
			continue
		}
		u, err := m.read(ctx, id)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				m.logger.Error(ctx, "failed to load record", logger.String("uuid", id.String()), logger.Error(err))
			}
			continue
		}
		if m.gen.Load() != gen {
			return
		}
		if _, inserted := m.insert(u); inserted {
			loaded++
		}
	}

	if m.gen.Load() == gen {
		m.ready.Store(true)
		m.logger.Info(ctx, "records bootstrapped", logger.Int("loaded", loaded), logger.Int("cached", m.users.Len()))
	}
}

// topTick runs on the main executor. It snapshots the live kits and hands the
// rebuild to a background worker.
func (m *Manager) topTick(ctx context.Context) {
	kits := m.kits.Kits()
	board := m.board.Load()
	err := m.exec.Async("users.top.rebuild", func(ctx context.Context) {
		if !m.ready.Load() {
			return
		}
		board.Update(ctx, m.users.Values(), kits)
	})
	if err != nil {
		m.logger.Debug(ctx, "leaderboard rebuild skipped", logger.Error(err))
	}
}

// read loads a record and applies the runtime settings. Concurrent reads of
// the same id share one file read.
func (m *Manager) read(ctx context.Context, id uuid.UUID) (*model.User, error) {
	v, err, _ := m.loads.Do(id.String(), func() (any, error) {
		return m.repo.Load(ctx, id)
	})
	switch {
	case err == nil:
		metrics.RecordUserLoad("loaded")
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordUserLoad("not_found")
		return nil, err
	case errors.Is(err, repository.ErrCorrupt):
		metrics.RecordUserLoad("corrupt")
		return nil, err
	default:
		metrics.RecordUserLoad("error")
		return nil, err
	}
	u := v.(*model.User)
	m.apply(u)
	return u, nil
}

// save writes u. A cancelled caller does not abort the write: the record has
// already left the cache and this is its only copy.
func (m *Manager) save(ctx context.Context, u *model.User) error {
	ctx = context.WithoutCancel(ctx)
	if err := m.repo.Save(ctx, u); err != nil {
		metrics.RecordUserSave("error")
		m.logger.Error(ctx, "failed to save record",
			logger.String("name", u.Name()),
			logger.String("uuid", u.ID().String()),
			logger.Error(err),
		)
		return err
	}
	metrics.RecordUserSave("ok")
	return nil
}
