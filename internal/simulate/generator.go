package simulate

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/bxcodec/faker/v4"
	"github.com/google/uuid"
)

// maxNameLength is the longest player name accepted by game clients.
const maxNameLength = 16

type player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type match struct {
	MatchID    string    `json:"match_id"`
	Winner     uuid.UUID `json:"winner"`
	Loser      uuid.UUID `json:"loser"`
	Kit        string    `json:"kit,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Health     float64   `json:"health"`
}

// generatePlayers returns n players. Names end in "_<index>", which keeps
// them unique.
func generatePlayers(n int) []player {
	players := make([]player, n)
	for i := range players {
		suffix := fmt.Sprintf("_%d", i)
		name := strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
				return r
			}
			return -1
		}, faker.Username())
		if len(name)+len(suffix) > maxNameLength {
			name = name[:maxNameLength-len(suffix)]
		}
		players[i] = player{ID: uuid.New(), Name: name + suffix}
	}
	return players
}

// generateMatches pairs distinct players at random.
func generateMatches(rng *rand.Rand, players []player, kits []string, n int) []match {
	matches := make([]match, n)
	for i := range matches {
		w := rng.IntN(len(players))
		l := rng.IntN(len(players) - 1)
		if l >= w {
			l++
		}
		m := match{
			MatchID:    uuid.NewString(),
			Winner:     players[w].ID,
			Loser:      players[l].ID,
			DurationMS: 10_000 + rng.Int64N(290_000),
			Health:     float64(1+rng.IntN(40)) / 2,
		}
		if len(kits) > 0 {
			m.Kit = kits[rng.IntN(len(kits))]
		}
		matches[i] = m
	}
	return matches
}

// tally counts the expected wins and losses per player.
func tally(matches []match) (wins, losses map[uuid.UUID]int) {
	wins, losses = map[uuid.UUID]int{}, map[uuid.UUID]int{}
	for _, m := range matches {
		wins[m.Winner]++
		losses[m.Loser]++
	}
	return wins, losses
}
