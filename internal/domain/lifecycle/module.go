// Package lifecycle loads, unloads and reloads the service's modules in
// registration order.
package lifecycle

import "context"

// Loadable is a module with a load and an unload routine.
type Loadable interface {
	// Name identifies the module; lookups ignore case.
	Name() string
	Load(ctx context.Context) error
	Unload(ctx context.Context) error
}

// Reloadable is implemented by modules that may be reloaded on their own.
// Modules that do not implement it, or report false, only take part in a
// full reload.
type Reloadable interface {
	Loadable
	AllowReload() bool
}

// State is a module's lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "unloaded"
}

func reloadable(m Loadable) bool {
	r, ok := m.(Reloadable)
	return ok && r.AllowReload()
}
