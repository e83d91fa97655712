package model

import (
	"time"

	"github.com/google/uuid"
)

// Match is one entry of a player's duel history.
type Match struct {
	Winner   string        `json:"winner"`
	Loser    string        `json:"loser"`
	Kit      string        `json:"kit"`
	Creation time.Time     `json:"creation"`
	Duration time.Duration `json:"duration"`
	Health   float64       `json:"health"` // winner's remaining health
}

// MatchResult is a finished duel submitted to the record store.
// Kit may be empty for unranked duels.
type MatchResult struct {
	Winner   uuid.UUID     `json:"winner"`
	Loser    uuid.UUID     `json:"loser"`
	Kit      string        `json:"kit"`
	Duration time.Duration `json:"duration"`
	Health   float64       `json:"health"`
}

// Player identifies a connected player.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
