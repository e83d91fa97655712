package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrRejected is returned when a task cannot be accepted because the
	// queue is full or closed.
	ErrRejected = errors.New("task rejected")
)
