package kit

import "errors"

// Sentinel kinds for kit registry errors.
var (
	ErrKitExists   = errors.New("kit already exists")
	ErrKitNotFound = errors.New("kit not found")
	ErrInvalidName = errors.New("invalid kit name")
)
