// Package leaderboard builds and publishes immutable top-N snapshots over the
// cached player records.
package leaderboard

import "time"

// Identifiers of the published metrics.
const (
	IdentifierWins   = "wins"
	IdentifierLosses = "losses"
	IdentifierRating = "rating"
)

// Pair is one leaderboard row.
type Pair struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TopEntry is an immutable leaderboard snapshot. Entries are ordered by
// value, highest first; ties keep encounter order. Never modify a
// published entry.
type TopEntry struct {
	Kit        string    `json:"kit,omitempty"`
	Type       string    `json:"type"`
	Identifier string    `json:"identifier"`
	Entries    []Pair    `json:"entries"`
	Created    time.Time `json:"created"`
}

// Age returns how long ago the entry was built.
func (e *TopEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.Created)
}

// NextUpdate returns the time left until the entry becomes stale, never negative.
func (e *TopEntry) NextUpdate(now time.Time, interval time.Duration) time.Duration {
	left := interval - e.Age(now)
	if left < 0 {
		return 0
	}
	return left
}

func (e *TopEntry) stale(now time.Time, interval time.Duration) bool {
	return e == nil || e.Age(now) >= interval
}
