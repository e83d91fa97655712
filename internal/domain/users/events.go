package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/duels/internal/adapters/repository"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
)

// OnConnect makes sure the player's record is cached. A cached record only
// has its name refreshed; otherwise the record is loaded (or created) on a
// background worker and published on the main executor.
func (m *Manager) OnConnect(ctx context.Context, p model.Player) error {
	if u := m.GetByID(p.ID); u != nil {
		m.rename(u, p.Name)
		return nil
	}

	err := m.exec.Async("users.load", func(ctx context.Context) {
		u, created, err := m.loadOrCreate(ctx, p)
		if err != nil {
			m.logger.Error(ctx, "failed to load record",
				logger.String("name", p.Name),
				logger.String("uuid", p.ID.String()),
				logger.Error(err),
			)
			m.notify(p, NoticeLoadFailure)
			return
		}

		if err := m.exec.Sync("users.publish", func(ctx context.Context) { m.publish(ctx, p, u, created) }); err != nil {
			m.logger.Error(ctx, "failed to publish record", logger.String("name", p.Name), logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling load of %s: %w", p.Name, err)
	}
	return nil
}

// OnDisconnect removes the player's record from the cache and saves it on a
// background worker. A failed save is logged; the record is not re-cached.
func (m *Manager) OnDisconnect(ctx context.Context, p model.Player) error {
	u, ok := m.users.LoadAndDelete(p.ID)
	if !ok {
		return nil
	}
	m.names.CompareAndDelete(lowerName(u), p.ID)
	metrics.UpdateUsersCached(m.users.Len())

	err := m.exec.Async("users.save", func(ctx context.Context) { _ = m.save(ctx, u) })
	if err != nil {
		// executor is full or stopped; keep the data anyway
		m.logger.Warn(ctx, "save not queued, saving inline", logger.String("name", u.Name()), logger.Error(err))
		return m.save(ctx, u)
	}
	return nil
}

// loadOrCreate reads the player's record. A missing or corrupt file yields a
// fresh record; created reports that case.
func (m *Manager) loadOrCreate(ctx context.Context, p model.Player) (u *model.User, created bool, err error) {
	u, err = m.read(ctx, p.ID)
	switch {
	case err == nil:
		return u, false, nil
	case errors.Is(err, repository.ErrCorrupt):
		m.logger.Warn(ctx, "corrupt record replaced with a fresh one",
			logger.String("name", p.Name),
			logger.String("uuid", p.ID.String()),
			logger.Error(err),
		)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	params := m.params.Load()
	return model.NewUser(p.ID, p.Name, params.defaultRating, params.matchesToDisplay), true, nil
}

// publish runs on the main executor.
func (m *Manager) publish(ctx context.Context, p model.Player, u *model.User, created bool) {
	if !m.roster.IsOnline(p.ID) {
		m.logger.Debug(ctx, "player left before the record was ready", logger.String("name", p.Name))
		return
	}

	actual, inserted := m.insert(u)
	m.rename(actual, p.Name)
	if inserted && created {
		metrics.RecordUserCreated()
		m.onCreate(ctx, actual)
	}
}

func (m *Manager) notify(p model.Player, key string) {
	if m.messenger == nil {
		return
	}
	if err := m.exec.Sync("users.notice", func(ctx context.Context) { m.messenger.Send(ctx, p.ID, key) }); err != nil {
		m.logger.Warn(context.Background(), "notice dropped", logger.String("name", p.Name), logger.Error(err))
	}
}
