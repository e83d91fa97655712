package repository

import "errors"

// Sentinel kinds for record persistence errors.
var (
	ErrNotFound = errors.New("record not found")
	ErrCorrupt  = errors.New("record file corrupt")
)
