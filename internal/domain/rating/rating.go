// Package rating computes Elo rating changes for finished duels.
package rating

import "math"

const defaultKFactor = 32

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithKFactor sets the maximum rating change of a single match.
func WithKFactor(k int) Option {
	return func(c *Calculator) {
		if k > 0 {
			c.k = k
		}
	}
}

// Calculator applies the Elo formula with a fixed K-factor.
type Calculator struct {
	k int
}

// NewCalculator creates a Calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{k: defaultKFactor}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// KFactor returns the configured K-factor.
func (c *Calculator) KFactor() int { return c.k }

// Expected returns the probability that a player rated a beats one rated b.
func Expected(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// Change returns the points the winner gains and the loser loses.
// The result is floored and lies in [0, K].
func (c *Calculator) Change(winner, loser int) int {
	return int(math.Floor(float64(c.k) * (1 - Expected(winner, loser))))
}

// Apply returns both ratings after the winner beat the loser.
func (c *Calculator) Apply(winner, loser int) (newWinner, newLoser int) {
	change := c.Change(winner, loser)
	return winner + change, loser - change
}
