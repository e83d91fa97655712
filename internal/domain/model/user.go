// Package model contains domain models passed between layers.
package model

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// User is a player's persistent record. All methods are safe for concurrent use.
//
// defaultRating and matchesToDisplay are runtime parameters. They are never
// serialised and must be re-applied after every load.
type User struct {
	mu      sync.RWMutex
	id      uuid.UUID
	name    string
	wins    int
	losses  int
	rating  map[string]int
	matches []Match

	defaultRating    int
	matchesToDisplay int
}

// Profile is the serialisable shape of a User.
type Profile struct {
	UUID    uuid.UUID      `json:"uuid"`
	Name    string         `json:"name"`
	Wins    int            `json:"wins"`
	Losses  int            `json:"losses"`
	Rating  map[string]int `json:"rating"`
	Matches []Match        `json:"matches"`
}

// NewUser creates an empty record for a first-time player.
func NewUser(id uuid.UUID, name string, defaultRating, matchesToDisplay int) *User {
	u := &User{
		id:      id,
		name:    name,
		rating:  map[string]int{},
		matches: []Match{},
	}
	u.Apply(defaultRating, matchesToDisplay)
	return u
}

// Apply sets the runtime parameters and trims the history to the new cap.
// A negative cap is treated as 0.
func (u *User) Apply(defaultRating, matchesToDisplay int) {
	if matchesToDisplay < 0 {
		matchesToDisplay = 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.defaultRating = defaultRating
	u.matchesToDisplay = matchesToDisplay
	u.trimLocked()
}

func (u *User) ID() uuid.UUID {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.id
}

func (u *User) Name() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.name
}

// SetName records the latest known name and returns the previous one.
func (u *User) SetName(name string) (previous string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	previous = u.name
	u.name = name
	return previous
}

func (u *User) Wins() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.wins
}

func (u *User) Losses() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.losses
}

// AddWin increments the win counter.
func (u *User) AddWin() {
	u.mu.Lock()
	u.wins++
	u.mu.Unlock()
}

// AddLoss increments the loss counter.
func (u *User) AddLoss() {
	u.mu.Lock()
	u.losses++
	u.mu.Unlock()
}

// Rating returns the rating for kit, or the default rating when the player
// has no entry for it.
func (u *User) Rating(kit string) int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if r, ok := u.rating[kit]; ok {
		return r
	}
	return u.defaultRating
}

// SetRating stores the rating for kit.
func (u *User) SetRating(kit string, value int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.rating[kit] = value
}

// Ratings returns a copy of the per-kit ratings.
func (u *User) Ratings() map[string]int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make(map[string]int, len(u.rating))
	for k, v := range u.rating {
		out[k] = v
	}
	return out
}

// AddMatch appends m to the history, dropping the oldest entries past the cap.
func (u *User) AddMatch(m Match) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.matches = append(u.matches, m)
	u.trimLocked()
}

// Matches returns a copy of the history, oldest first.
func (u *User) Matches() []Match {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]Match, len(u.matches))
	copy(out, u.matches)
	return out
}

// Profile returns a consistent copy of the persistent fields.
func (u *User) Profile() Profile {
	u.mu.RLock()
	defer u.mu.RUnlock()
	p := Profile{
		UUID:    u.id,
		Name:    u.name,
		Wins:    u.wins,
		Losses:  u.losses,
		Rating:  make(map[string]int, len(u.rating)),
		Matches: make([]Match, len(u.matches)),
	}
	for k, v := range u.rating {
		p.Rating[k] = v
	}
	copy(p.Matches, u.matches)
	return p
}

// MarshalJSON encodes the persistent fields only.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Profile())
}

// UnmarshalJSON decodes a record. Runtime parameters are left untouched.
func (u *User) UnmarshalJSON(b []byte) error {
	var p Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.id = p.UUID
	u.name = p.Name
	u.wins = p.Wins
	u.losses = p.Losses
	u.rating = p.Rating
	if u.rating == nil {
		u.rating = map[string]int{}
	}
	u.matches = p.Matches
	if u.matches == nil {
		u.matches = []Match{}
	}
	return nil
}

func (u *User) trimLocked() {
	if over := len(u.matches) - u.matchesToDisplay; over > 0 {
		u.matches = append(u.matches[:0:0], u.matches[over:]...)
	}
}
