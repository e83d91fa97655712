package users

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
)

// RecordMatch applies a finished duel to both players' records: the winner
// gains a win, the loser a loss, ratings move by Elo when a kit is given,
// and the match is appended to both histories. Both players must be online.
func (m *Manager) RecordMatch(ctx context.Context, r model.MatchResult) (model.Match, error) {
	if r.Winner == r.Loser {
		return model.Match{}, fmt.Errorf("%w: winner and loser are the same player", ErrInvalidMatch)
	}
	if r.Kit != "" && !slices.Contains(m.kits.Kits(), r.Kit) {
		return model.Match{}, fmt.Errorf("%w: unknown kit %q", ErrInvalidMatch, r.Kit)
	}

	// Only connected players are saved on disconnect or unload, so records
	// cached by the bootstrap scan stay read-only.
	for _, id := range []uuid.UUID{r.Winner, r.Loser} {
		if !m.roster.IsOnline(id) {
			return model.Match{}, fmt.Errorf("%w: %s", ErrNotOnline, id)
		}
	}

	winner := m.GetByID(r.Winner)
	if winner == nil {
		return model.Match{}, fmt.Errorf("%w: %s", ErrNotCached, r.Winner)
	}
	loser := m.GetByID(r.Loser)
	if loser == nil {
		return model.Match{}, fmt.Errorf("%w: %s", ErrNotCached, r.Loser)
	}

	winner.AddWin()
	loser.AddLoss()

	if r.Kit != "" {
		calc := m.params.Load().calc
		w, l := calc.Apply(winner.Rating(r.Kit), loser.Rating(r.Kit))
		winner.SetRating(r.Kit, w)
		loser.SetRating(r.Kit, l)
	}

	match := model.Match{
		Winner:   winner.Name(),
		Loser:    loser.Name(),
		Kit:      r.Kit,
		Creation: m.now(),
		Duration: r.Duration,
		Health:   r.Health,
	}
	winner.AddMatch(match)
	loser.AddMatch(match)

	metrics.RecordMatch()
	m.logger.Debug(ctx, "match recorded",
		logger.String("winner", match.Winner),
		logger.String("loser", match.Loser),
		logger.String("kit", r.Kit),
	)
	return match, nil
}
