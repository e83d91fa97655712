package service

import (
	"context"

	"github.com/okian/duels/pkg/logger"
)

// configModule re-reads configuration when loaded. It is registered first so
// that a full reload hands fresh settings to every later module.
type configModule struct {
	s *Service
}

func (m *configModule) Name() string { return "Config" }

func (m *configModule) AllowReload() bool { return true }

func (m *configModule) Load(ctx context.Context) error {
	cfg := m.s.cfg.Load()
	if m.s.loadConfig != nil {
		next, err := m.s.loadConfig(ctx)
		if err != nil {
			return err
		}
		cfg = next
		m.s.cfg.Store(cfg)
	}
	if cfg.LogLevel != "" {
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			m.s.logger.Warn(ctx, "ignoring log level", logger.String("level", cfg.LogLevel), logger.Error(err))
		}
	}
	return nil
}

func (m *configModule) Unload(context.Context) error { return nil }
