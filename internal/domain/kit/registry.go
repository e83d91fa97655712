// Package kit keeps the live set of kits. Each kit has its own rating
// leaderboard.
package kit

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/okian/duels/pkg/logger"
)

// ModuleName is the lifecycle name of the registry.
const ModuleName = "KitManager"

// Kit is a named duel category.
type Kit struct {
	Name string `json:"name"`
}

// Registry is the live kit set. Kits are kept in insertion order and
// compared by exact name.
type Registry struct {
	mu   sync.RWMutex
	kits []Kit

	seed   func() []string
	logger logger.Logger
}

// NewRegistry creates a registry. seed supplies the kit names applied on
// every Load; it may be nil.
func NewRegistry(seed func() []string) *Registry {
	return &Registry{
		seed:   seed,
		logger: logger.Get().Named("kits"),
	}
}

// Name implements lifecycle.Loadable.
func (r *Registry) Name() string { return ModuleName }

// AllowReload implements lifecycle.Reloadable.
func (r *Registry) AllowReload() bool { return true }

// Load replaces the live set with the seeded kits.
func (r *Registry) Load(ctx context.Context) error {
	var names []string
	if r.seed != nil {
		names = r.seed()
	}

	kits := make([]Kit, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidName)
		}
		if slices.ContainsFunc(kits, func(k Kit) bool { return k.Name == name }) {
			continue
		}
		kits = append(kits, Kit{Name: name})
	}

	r.mu.Lock()
	r.kits = kits
	r.mu.Unlock()

	r.logger.Info(ctx, "kits loaded", logger.Int("count", len(kits)))
	return nil
}

// Unload clears the live set.
func (r *Registry) Unload(ctx context.Context) error {
	r.mu.Lock()
	r.kits = nil
	r.mu.Unlock()
	return nil
}

// Add registers a kit.
func (r *Registry) Add(name string) (Kit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Kit{}, fmt.Errorf("%w: empty name", ErrInvalidName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(name) >= 0 {
		return Kit{}, fmt.Errorf("%w: %s", ErrKitExists, name)
	}
	k := Kit{Name: name}
	r.kits = append(r.kits, k)
	return k, nil
}

// Remove unregisters a kit.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrKitNotFound, name)
	}
	r.kits = slices.Delete(slices.Clone(r.kits), i, i+1)
	return nil
}

// Get returns the kit named name.
func (r *Registry) Get(name string) (Kit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(name); i >= 0 {
		return r.kits[i], true
	}
	return Kit{}, false
}

// Has reports whether name is a live kit.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns a copy of the live kits.
func (r *Registry) List() []Kit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.kits)
}

// Kits returns the live kit names.
func (r *Registry) Kits() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.kits))
	for i, k := range r.kits {
		out[i] = k.Name
	}
	return out
}

func (r *Registry) indexLocked(name string) int {
	return slices.IndexFunc(r.kits, func(k Kit) bool { return k.Name == name })
}
