// Package service wires the record store, leaderboards, kits and module
// lifecycle together and implements the dependencies required by the
// HTTP API and the console.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/adapters/mq/scheduler"
	"github.com/okian/duels/internal/adapters/notice"
	"github.com/okian/duels/internal/adapters/repository"
	"github.com/okian/duels/internal/config"
	"github.com/okian/duels/internal/domain/dedupe"
	"github.com/okian/duels/internal/domain/kit"
	"github.com/okian/duels/internal/domain/leaderboard"
	"github.com/okian/duels/internal/domain/lifecycle"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/internal/domain/types"
	"github.com/okian/duels/internal/domain/users"
	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
	"github.com/okian/duels/pkg/syncmap"
)

// ErrNotStarted is returned by operations called outside Start and Stop.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the duels record cache.
type Service struct {
	mu sync.RWMutex

	cfg        atomic.Pointer[config.Config]
	loadConfig func(ctx context.Context) (*config.Config, error)

	// Core components
	sched     *scheduler.Scheduler
	store     *repository.FileStore
	kits      *kit.Registry
	users     *users.Manager
	notices   *notice.Mailbox
	dedupe    dedupe.Deduper
	lifecycle *lifecycle.Controller
	sessions  *syncmap.Map[uuid.UUID, model.Player]

	now func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfigLoader sets how the Config module re-reads configuration on reload.
// Without it a reload keeps the configuration given to New.
func WithConfigLoader(fn func(ctx context.Context) (*config.Config, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.loadConfig = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service from an initial configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{
		sessions: syncmap.New[uuid.UUID, model.Player](),
		now:      time.Now,
	}
	s.cfg.Store(cfg)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the current configuration.
func (s *Service) Config() *config.Config { return s.cfg.Load() }

// Start builds the components and loads every module.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	cfg := s.cfg.Load()
	s.logger.Info(ctx, "starting duels service...")

	s.sched = scheduler.New(
		scheduler.WithWorkerCount(cfg.WorkerCount),
		scheduler.WithQueueSize(cfg.QueueSize),
	)
	s.store = repository.NewFileStore(cfg.UsersDir())
	s.notices = notice.NewMailbox(
		notice.WithTTL(cfg.NoticeTTL),
		notice.WithMaxPlayers(cfg.NoticeMaxPlayers),
	)
	s.dedupe = dedupe.New(
		dedupe.WithMaxSize(cfg.MatchDedupeSize),
		dedupe.WithTTL(cfg.MatchDedupeTTL),
	)
	s.kits = kit.NewRegistry(func() []string { return s.cfg.Load().Kits })
	s.users = users.New(s.sched, s.store, s.kits, s, s.cfg.Load,
		users.WithMessenger(s.notices),
		users.WithClock(s.now),
		users.WithCreateHook(func(ctx context.Context, u *model.User) {
			s.logger.Info(ctx, "new player record created",
				logger.String("name", u.Name()),
				logger.String("uuid", u.ID().String()),
			)
		}),
	)
	s.lifecycle = lifecycle.New(lifecycle.WithDisableHook(func(ctx context.Context, cause error) {
		metrics.RecordErrorByType("module_load", "critical")
		s.logger.Error(ctx, "service disabled", logger.Error(cause))
	}))
	s.lifecycle.Register(&configModule{s: s}, s.kits, s.users)

	s.sched.Start(context.WithoutCancel(ctx))
	if err := s.lifecycle.LoadAll(ctx); err != nil {
		_ = s.sched.Stop(ctx)
		return fmt.Errorf("loading modules: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "duels service started",
		logger.Int("workers", cfg.WorkerCount),
		logger.Int("queueSize", cfg.QueueSize),
		logger.String("dataDir", cfg.DataDir),
	)
	return nil
}

// Stop unloads every module, which saves online players, then drains the
// executors.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping duels service...")

	s.lifecycle.UnloadAll(ctx)
	err := s.sched.Stop(ctx)

	s.started = false
	s.logger.Info(ctx, "duels service stopped")
	return err
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Online implements users.Roster.
func (s *Service) Online() []model.Player { return s.sessions.Values() }

// IsOnline implements users.Roster.
func (s *Service) IsOnline(id uuid.UUID) bool {
	_, ok := s.sessions.Load(id)
	return ok
}

// Connect registers a session and makes sure the player's record is cached.
func (s *Service) Connect(ctx context.Context, p model.Player) error {
	if err := s.running(); err != nil {
		return err
	}
	if s.lifecycle.Disabled() {
		return lifecycle.ErrDisabled
	}
	s.sessions.Store(p.ID, p)
	return s.users.OnConnect(ctx, p)
}

// Disconnect ends a session. The player's record is saved in the background.
func (s *Service) Disconnect(ctx context.Context, id uuid.UUID) error {
	if err := s.running(); err != nil {
		return err
	}
	p, ok := s.sessions.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("%w: %s", users.ErrNotOnline, id)
	}
	return s.users.OnDisconnect(ctx, p)
}

// User looks a cached record up by UUID or, failing that, by name.
func (s *Service) User(key string) *model.User {
	if s.running() != nil {
		return nil
	}
	if id, err := uuid.Parse(key); err == nil {
		return s.users.GetByID(id)
	}
	return s.users.Get(key)
}

// RecordMatch applies a finished duel.
func (s *Service) RecordMatch(ctx context.Context, r model.MatchResult) (model.Match, error) {
	if err := s.running(); err != nil {
		return model.Match{}, err
	}
	return s.users.RecordMatch(ctx, r)
}

// SeenAndRecord reports whether a match submission ID was already seen and
// records it otherwise.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if s.running() != nil {
		return false
	}
	return s.dedupe.SeenAndRecord(ctx, id)
}

// Unrecord forgets a match submission ID so that it can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if s.running() != nil {
		return
	}
	s.dedupe.Unrecord(ctx, id)
}

// TopWins returns the wins leaderboard, or false before it is built.
func (s *Service) TopWins() (types.Leaderboard, bool) {
	if s.running() != nil {
		return types.Leaderboard{}, false
	}
	return s.view(s.users.TopWins())
}

// TopLosses returns the losses leaderboard, or false before it is built.
func (s *Service) TopLosses() (types.Leaderboard, bool) {
	if s.running() != nil {
		return types.Leaderboard{}, false
	}
	return s.view(s.users.TopLosses())
}

// TopRating returns the rating leaderboard of kit, or false if none is published.
func (s *Service) TopRating(kit string) (types.Leaderboard, bool) {
	if s.running() != nil {
		return types.Leaderboard{}, false
	}
	return s.view(s.users.TopRating(kit))
}

func (s *Service) view(e *leaderboard.TopEntry) (types.Leaderboard, bool) {
	if e == nil {
		return types.Leaderboard{}, false
	}
	entries := make([]types.Entry, len(e.Entries))
	for i, p := range e.Entries {
		entries[i] = types.Entry{Rank: i + 1, Name: p.Name, Value: p.Value}
	}
	return types.Leaderboard{
		Type:         e.Type,
		Identifier:   e.Identifier,
		Kit:          e.Kit,
		Entries:      entries,
		Created:      e.Created,
		NextUpdateMS: e.NextUpdate(s.now(), s.users.RefreshInterval()).Milliseconds(),
	}, true
}

// Kits returns the live kits.
func (s *Service) Kits() []kit.Kit {
	if s.running() != nil {
		return []kit.Kit{}
	}
	return s.kits.List()
}

// AddKit registers a kit.
func (s *Service) AddKit(name string) (kit.Kit, error) {
	if err := s.running(); err != nil {
		return kit.Kit{}, err
	}
	return s.kits.Add(name)
}

// RemoveKit unregisters a kit. Its leaderboard is evicted on the next pass.
func (s *Service) RemoveKit(name string) error {
	if err := s.running(); err != nil {
		return err
	}
	return s.kits.Remove(name)
}

// ReloadableNames lists modules that can be reloaded on their own.
func (s *Service) ReloadableNames() []string {
	if s.running() != nil {
		return []string{}
	}
	return s.lifecycle.ReloadableNames()
}

// Complete returns reloadable module names starting with prefix.
func (s *Service) Complete(prefix string) []string {
	if s.running() != nil {
		return []string{}
	}
	return s.lifecycle.Complete(prefix)
}

// Reload unloads and loads every module.
func (s *Service) Reload(ctx context.Context) error {
	if err := s.running(); err != nil {
		return err
	}
	return s.lifecycle.Reload(ctx)
}

// ReloadModule reloads one module and returns its registered name.
func (s *Service) ReloadModule(ctx context.Context, name string) (string, error) {
	if err := s.running(); err != nil {
		return "", err
	}
	return s.lifecycle.ReloadModule(ctx, name)
}

// Notices drains the player's pending notices.
func (s *Service) Notices(id uuid.UUID) []notice.Notice {
	if s.running() != nil {
		return []notice.Notice{}
	}
	return s.notices.Drain(id)
}

// ModuleStates maps every registered module to its lifecycle state.
func (s *Service) ModuleStates() map[string]string {
	if s.running() != nil {
		return map[string]string{}
	}
	return s.moduleStates()
}

func (s *Service) moduleStates() map[string]string {
	out := make(map[string]string)
	for _, name := range s.lifecycle.Names() {
		if st, ok := s.lifecycle.State(name); ok {
			out[name] = st.String()
		}
	}
	return out
}

// Disabled reports whether the last full load failed. A stopped service
// counts as disabled.
func (s *Service) Disabled() bool {
	if s.running() != nil {
		return true
	}
	return s.lifecycle.Disabled()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg.Load()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": cfg.WorkerCount,
		"queueSize":   cfg.QueueSize,
		"dataDir":     cfg.DataDir,
	}

	if s.started {
		mainLen, bgLen := s.sched.QueueLengths()
		cached := s.users.Cached()

		stats["online"] = s.sessions.Len()
		stats["cachedUsers"] = cached
		stats["ready"] = s.users.Ready()
		stats["disabled"] = s.lifecycle.Disabled()
		stats["kits"] = len(s.kits.Kits())
		stats["leaderboardKits"] = s.users.LeaderboardKits()
		stats["modules"] = s.moduleStates()
		stats["mainQueueLength"] = mainLen
		stats["backgroundQueueLength"] = bgLen
		stats["pendingNotices"] = s.notices.Pending()
		stats["dedupeSize"] = s.dedupe.Size()

		metrics.UpdateUsersCached(cached)
	}

	return stats
}
