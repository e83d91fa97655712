// Package dedupe tracks submission IDs so that a retried request is applied
// at most once.
package dedupe

import (
	"context"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
)

const (
	defaultMaxSize = 50_000
	defaultTTL     = 10 * time.Minute
)

// Deduper records seen IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so that a failed submission can be retried.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of remembered IDs.
	Size() int64
}

// cachedDeduper remembers IDs in a size-bounded cache with expiry.
type cachedDeduper struct {
	// makes check-then-set atomic
	mu   sync.Mutex
	seen cache.Cache[string, struct{}]

	maxSize int
	ttl     time.Duration
}

// New creates a Deduper bounded by size and age.
func New(opts ...Option) Deduper {
	d := &cachedDeduper{
		maxSize: defaultMaxSize,
		ttl:     defaultTTL,
	}
	for _, opt := range opts {
		opt(d)
	}

	c := cache.NewCache[string, struct{}]().WithMaxKeys(d.maxSize)
	if d.ttl > 0 {
		c = c.WithTTL(d.ttl)
	}
	d.seen = c
	return d
}

func (d *cachedDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen.Get(id); ok {
		return true
	}
	d.seen.Set(id, struct{}{}, 0)
	return false
}

func (d *cachedDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen.Invalidate(id)
}

func (d *cachedDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen.DeleteExpired()
	return int64(d.seen.Len())
}
