package dedupe

import "time"

// Option applies a configuration option to the Deduper.
type Option func(*cachedDeduper)

// WithMaxSize sets the maximum number of IDs to keep. The oldest recorded
// IDs are dropped first. Values <= 0 keep the default.
func WithMaxSize(maxSize int) Option {
	return func(d *cachedDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}

// WithTTL sets how long a recorded ID is remembered. Zero remembers IDs until
// they are evicted by size.
func WithTTL(ttl time.Duration) Option {
	return func(d *cachedDeduper) {
		if ttl >= 0 {
			d.ttl = ttl
		}
	}
}
