// Package types contains common types used across the application
package types

import "time"

// Entry represents a leaderboard row.
type Entry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Leaderboard is the API view of a published snapshot.
type Leaderboard struct {
	Type       string    `json:"type"`
	Identifier string    `json:"identifier"`
	Kit        string    `json:"kit,omitempty"`
	Entries    []Entry   `json:"entries"`
	Created    time.Time `json:"created"`
	// NextUpdateMS is the time left until the snapshot is rebuilt.
	NextUpdateMS int64 `json:"next_update_ms"`
}

// Session identifies a connected player.
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
