package users

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrNotCached    = errors.New("player record not cached")
	ErrInvalidMatch = errors.New("invalid match result")
	ErrNotOnline    = errors.New("player not online")
)
