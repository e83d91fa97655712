package lifecycle

import "errors"

// Sentinel kinds for lifecycle errors.
var (
	ErrModuleNotFound = errors.New("module not found")
	ErrNotReloadable  = errors.New("module is not reloadable")
	ErrModuleLoad     = errors.New("module load failed")
	ErrDisabled       = errors.New("host disabled")
)
