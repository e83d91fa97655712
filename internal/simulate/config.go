// Package simulate drives a running duels service over HTTP: it connects a
// crowd of generated players, plays random matches between them, checks the
// records against the expected tallies and disconnects everyone.
package simulate

import (
	"runtime"
	"time"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL string        // Base URL of the service
	Players int           // Number of players to connect
	Matches int           // Number of matches to play
	Kits    []string      // Kits to play; empty plays unranked matches
	Workers int           // Number of concurrent workers
	Timeout time.Duration // HTTP request timeout
	Wait    time.Duration // How long to wait for records to be cached
	Seed    uint64        // Seed for pairing players; 0 picks one
	Retries float64       // Share of matches submitted twice, in [0, 1]
}

// DefaultConfig returns a Config for a service on the default address.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:9080",
		Players: 50,
		Matches: 1000,
		Workers: runtime.NumCPU() * 2,
		Timeout: 30 * time.Second,
		Wait:    time.Minute,
	}
}

// Stats holds run statistics.
type Stats struct {
	PlayersConnected int
	MatchesPlayed    int
	MatchesFailed    int
	Duplicates       int
	Mismatches       int
	Duration         time.Duration
}
