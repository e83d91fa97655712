package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
)

type entry struct {
	module Loadable
	state  State
}

// Controller drives module lifecycles. Operations are serialised.
type Controller struct {
	mu       sync.Mutex
	modules  []*entry
	disabled atomic.Bool

	onDisable func(ctx context.Context, cause error)
	logger    logger.Logger
}

// New creates a Controller with no modules.
func New(opts ...Option) *Controller {
	c := &Controller{
		onDisable: func(context.Context, error) {},
		logger:    logger.Get().Named("lifecycle"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register appends modules in dependency order. Modules load in this order
// and unload in reverse.
func (c *Controller) Register(modules ...Loadable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range modules {
		c.modules = append(c.modules, &entry{module: m})
	}
}

// LoadAll loads every unloaded module in order. On the first failure the
// modules loaded so far are unloaded in reverse, the host is disabled and
// the error is returned wrapping ErrModuleLoad.
func (c *Controller) LoadAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadAllLocked(ctx)
}

// UnloadAll unloads every loaded module in reverse order. Failures are
// logged and do not stop the pass.
func (c *Controller) UnloadAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unloadAllLocked(ctx)
}

// Reload performs a full reload. A failure leaves the host disabled.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info(ctx, "reloading all modules")
	c.unloadAllLocked(ctx)
	if err := c.loadAllLocked(ctx); err != nil {
		metrics.RecordReload("all", "failed")
		return err
	}
	metrics.RecordReload("all", "ok")
	return nil
}

// ReloadModule unloads and loads a single reloadable module and returns its
// registered name. A module whose load fails is left unloaded.
func (c *Controller) ReloadModule(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.findLocked(name)
	if e == nil {
		metrics.RecordReload(name, "not_found")
		return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	moduleName := e.module.Name()
	if !reloadable(e.module) {
		metrics.RecordReload(moduleName, "not_reloadable")
		return moduleName, fmt.Errorf("%w: %s", ErrNotReloadable, moduleName)
	}
	if c.disabled.Load() {
		metrics.RecordReload(moduleName, "disabled")
		return moduleName, ErrDisabled
	}

	c.unloadLocked(ctx, e)
	if err := c.loadLocked(ctx, e); err != nil {
		metrics.RecordReload(moduleName, "failed")
		return moduleName, err
	}
	metrics.RecordReload(moduleName, "ok")
	c.logger.Info(ctx, "module reloaded", logger.String("module", moduleName))
	return moduleName, nil
}

// State returns the state of the named module.
func (c *Controller) State(name string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.findLocked(name); e != nil {
		return e.state, true
	}
	return StateUnloaded, false
}

// Names returns every registered module name in registration order.
func (c *Controller) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.modules))
	for _, e := range c.modules {
		out = append(out, e.module.Name())
	}
	return out
}

// ReloadableNames returns the names of reloadable modules in registration order.
func (c *Controller) ReloadableNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.modules))
	for _, e := range c.modules {
		if reloadable(e.module) {
			out = append(out, e.module.Name())
		}
	}
	return out
}

// Complete returns the reloadable names starting with prefix, ignoring case.
func (c *Controller) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var out []string
	for _, name := range c.ReloadableNames() {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			out = append(out, name)
		}
	}
	return out
}

// Disabled reports whether the last full load failed.
func (c *Controller) Disabled() bool { return c.disabled.Load() }

func (c *Controller) findLocked(name string) *entry {
	for _, e := range c.modules {
		if strings.EqualFold(e.module.Name(), name) {
			return e
		}
	}
	return nil
}

func (c *Controller) loadAllLocked(ctx context.Context) error {
	for i, e := range c.modules {
		if e.state == StateLoaded {
			continue
		}
		if err := c.loadLocked(ctx, e); err != nil {
			for j := i - 1; j >= 0; j-- {
				c.unloadLocked(ctx, c.modules[j])
			}
			c.disabled.Store(true)
			c.logger.Error(ctx, "load failed, disabling", logger.String("module", e.module.Name()), logger.Error(err))
			c.onDisable(ctx, err)
			return err
		}
	}
	c.disabled.Store(false)
	return nil
}

func (c *Controller) unloadAllLocked(ctx context.Context) {
	for i := len(c.modules) - 1; i >= 0; i-- {
		c.unloadLocked(ctx, c.modules[i])
	}
}

func (c *Controller) loadLocked(ctx context.Context, e *entry) (err error) {
	name := e.module.Name()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			e.state = StateUnloaded
			metrics.RecordModuleOp(name, "load", "failed")
			err = fmt.Errorf("%w: %s: %w", ErrModuleLoad, name, err)
		}
	}()

	if err := e.module.Load(ctx); err != nil {
		return err
	}
	e.state = StateLoaded
	metrics.RecordModuleOp(name, "load", "ok")
	c.logger.Debug(ctx, "module loaded", logger.String("module", name))
	return nil
}

func (c *Controller) unloadLocked(ctx context.Context, e *entry) {
	if e.state != StateLoaded {
		return
	}
	name := e.module.Name()
	e.state = StateUnloaded
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordModuleOp(name, "unload", "failed")
			c.logger.Error(ctx, "module unload panicked", logger.String("module", name), logger.Any("panic", r))
		}
	}()
	if err := e.module.Unload(ctx); err != nil {
		metrics.RecordModuleOp(name, "unload", "failed")
		c.logger.Error(ctx, "module unload failed", logger.String("module", name), logger.Error(err))
		return
	}
	metrics.RecordModuleOp(name, "unload", "ok")
}
