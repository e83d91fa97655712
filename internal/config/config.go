// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"path/filepath"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile optionally mirrors logs to a size-rotated file.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`
	LogMaxAgeDays int    `koanf:"log_max_age_days"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Console enables the operator console on stdin.
	Console bool `koanf:"console"`

	// DataDir is the root data folder; records live in DataDir/users.
	DataDir string `koanf:"data_dir"`

	// DefaultRating is the rating of a player in a kit they never played.
	DefaultRating int `koanf:"default_rating"`

	// MatchesToDisplay caps each player's match history. Negative is treated as 0.
	MatchesToDisplay int `koanf:"matches_to_display"`

	// RatingKFactor is the Elo K-factor applied to match results.
	RatingKFactor int `koanf:"rating_k_factor"`

	// TopSize is the number of entries kept per leaderboard.
	TopSize int `koanf:"top_size"`

	// TopInitialDelay and TopPeriod schedule the leaderboard task.
	TopInitialDelay time.Duration `koanf:"top_initial_delay"`
	TopPeriod       time.Duration `koanf:"top_period"`

	// TopRefreshInterval is how old a leaderboard may get before it is rebuilt.
	TopRefreshInterval time.Duration `koanf:"top_refresh_interval"`

	// WorkerCount sets the number of background workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds each task queue.
	QueueSize int `koanf:"queue_size"`

	// Kits seeds the live kit registry.
	Kits []string `koanf:"kits"`

	// NoticeTTL is how long an undelivered player notice is kept.
	NoticeTTL time.Duration `koanf:"notice_ttl"`

	// NoticeMaxPlayers bounds the number of players with pending notices.
	NoticeMaxPlayers int `koanf:"notice_max_players"`

	// MatchDedupeSize and MatchDedupeTTL bound the remembered match IDs used
	// to ignore retried submissions.
	MatchDedupeSize int           `koanf:"match_dedupe_size"`
	MatchDedupeTTL  time.Duration `koanf:"match_dedupe_ttl"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogMaxSizeMB:       50,
		LogMaxBackups:      5,
		LogMaxAgeDays:      14,
		Addr:               ":9080",
		DataDir:            "data",
		DefaultRating:      1000,
		MatchesToDisplay:   10,
		RatingKFactor:      32,
		TopSize:            10,
		TopInitialDelay:    250 * time.Millisecond,
		TopPeriod:          time.Second,
		TopRefreshInterval: time.Minute,
		WorkerCount:        runtime.NumCPU() * 2,
		QueueSize:          100_000,
		Kits:               []string{},
		NoticeTTL:          5 * time.Minute,
		NoticeMaxPlayers:   10_000,
		MatchDedupeSize:    50_000,
		MatchDedupeTTL:     10 * time.Minute,
	}
}

// UsersDir returns the directory holding per-player record files.
func (c *Config) UsersDir() string {
	return filepath.Join(c.DataDir, "users")
}
