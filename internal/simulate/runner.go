package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/duels/pkg/logger"
)

var (
	// ErrMismatch is returned when a record disagrees with the matches played.
	ErrMismatch = errors.New("record mismatch")
	// ErrUnsorted is returned when a published leaderboard is out of order.
	ErrUnsorted = errors.New("leaderboard not sorted")
)

const pollInterval = 50 * time.Millisecond

type profile struct {
	UUID   uuid.UUID      `json:"uuid"`
	Name   string         `json:"name"`
	Wins   int            `json:"wins"`
	Losses int            `json:"losses"`
	Rating map[string]int `json:"rating"`
}

type leaderboard struct {
	Type    string `json:"type"`
	Entries []struct {
		Rank  int    `json:"rank"`
		Name  string `json:"name"`
		Value int    `json:"value"`
	} `json:"entries"`
}

// Run executes a complete simulation and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Players < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", cfg.Players)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := logger.Get().Named("simulate")
	start := time.Now()
	stats := &Stats{}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting duels simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("matches", cfg.Matches),
		logger.Int("workers", cfg.Workers),
	)

	if code, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil || code != http.StatusOK {
		return nil, fmt.Errorf("service health check failed: status %d: %v", code, err)
	}

	players := generatePlayers(cfg.Players)
	var connected atomic.Int64
	parallel(ctx, cfg.Workers, len(players), func(i int) {
		code, err := c.do(ctx, http.MethodPost, "/sessions", players[i], nil)
		if err != nil || code != http.StatusAccepted {
			log.Warn(ctx, "connect failed", logger.String("name", players[i].Name), logger.Int("status", code))
			return
		}
		connected.Add(1)
	})
	stats.PlayersConnected = int(connected.Load())
	defer disconnect(context.WithoutCancel(ctx), c, cfg.Workers, players)

	if err := waitCached(ctx, c, players, cfg.Wait); err != nil {
		return stats, err
	}
	log.Info(ctx, "players cached", logger.Int("players", stats.PlayersConnected))

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	matches := generateMatches(rand.New(rand.NewPCG(seed, seed)), players, cfg.Kits, cfg.Matches)

	// every retry repeats a match_id and must be acknowledged as a duplicate
	retries := int(float64(len(matches)) * cfg.Retries)
	var played, failed, dups atomic.Int64
	parallel(ctx, cfg.Workers, len(matches), func(i int) {
		code, err := c.do(ctx, http.MethodPost, "/matches", matches[i], nil)
		if err != nil || code != http.StatusCreated {
			failed.Add(1)
			return
		}
		played.Add(1)
		if i < retries {
			if code, err := c.do(ctx, http.MethodPost, "/matches", matches[i], nil); err == nil && code == http.StatusOK {
				dups.Add(1)
			}
		}
	})
	stats.MatchesPlayed, stats.MatchesFailed = int(played.Load()), int(failed.Load())
	stats.Duplicates = int(dups.Load())
	log.Info(ctx, "matches played", logger.Int("played", stats.MatchesPlayed), logger.Int("failed", stats.MatchesFailed))

	stats.Mismatches = verify(ctx, c, cfg.Workers, players, matches)

	var top leaderboard
	if code, err := c.do(ctx, http.MethodGet, "/top/wins", nil, &top); err == nil && code == http.StatusOK {
		if !sorted(top) {
			return stats, fmt.Errorf("%w: %s", ErrUnsorted, top.Type)
		}
		if len(top.Entries) > 0 {
			log.Info(ctx, "wins leader", logger.String("name", top.Entries[0].Name), logger.Int("wins", top.Entries[0].Value))
		}
	}

	stats.Duration = time.Since(start)
	log.Info(ctx, "simulation finished",
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
	)

	if stats.MatchesFailed == 0 && stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d records", ErrMismatch, stats.Mismatches)
	}
	return stats, nil
}

// waitCached polls until every player's record is cached.
func waitCached(ctx context.Context, c *client, players []player, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for _, p := range players {
		for {
			code, err := c.do(ctx, http.MethodGet, "/users/"+p.ID.String(), nil, nil)
			if err == nil && code == http.StatusOK {
				break
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("record of %s not cached after %s", p.Name, wait)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
		}
	}
	return nil
}

// verify compares every record with the tallies of the played matches and
// returns the number of records that disagree.
func verify(ctx context.Context, c *client, workers int, players []player, matches []match) int {
	wins, losses := tally(matches)
	log := logger.Get().Named("simulate")

	var mismatches atomic.Int64
	parallel(ctx, workers, len(players), func(i int) {
		p := players[i]
		var got profile
		code, err := c.do(ctx, http.MethodGet, "/users/"+p.ID.String(), nil, &got)
		if err != nil || code != http.StatusOK {
			mismatches.Add(1)
			return
		}
		if got.Wins != wins[p.ID] || got.Losses != losses[p.ID] {
			mismatches.Add(1)
			log.Warn(ctx, "record mismatch",
				logger.String("name", p.Name),
				logger.Int("wins", got.Wins),
				logger.Int("expectedWins", wins[p.ID]),
				logger.Int("losses", got.Losses),
				logger.Int("expectedLosses", losses[p.ID]),
			)
		}
	})
	return int(mismatches.Load())
}

// sorted reports whether entries are ranked by descending value.
func sorted(top leaderboard) bool {
	for i := 1; i < len(top.Entries); i++ {
		if top.Entries[i].Value > top.Entries[i-1].Value || top.Entries[i].Rank != i+1 {
			return false
		}
	}
	return true
}

func disconnect(ctx context.Context, c *client, workers int, players []player) {
	parallel(ctx, workers, len(players), func(i int) {
		_, _ = c.do(ctx, http.MethodDelete, "/sessions/"+players[i].ID.String(), nil, nil)
	})
}

// parallel calls fn for every index in [0, n) on a pool of workers.
func parallel(ctx context.Context, workers, n int, fn func(i int)) {
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fn(i)
			}
		}()
	}

send:
	for i := range n {
		select {
		case <-ctx.Done():
			break send
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
}
