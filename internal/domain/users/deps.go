package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/adapters/mq/scheduler"
	"github.com/okian/duels/internal/domain/model"
)

// Executor runs work on the host's main executor and background workers.
type Executor interface {
	Async(name string, fn func(ctx context.Context)) error
	Sync(name string, fn func(ctx context.Context)) error
	SyncRepeat(name string, fn func(ctx context.Context), delay, period time.Duration) (scheduler.TaskID, error)
	Cancel(id scheduler.TaskID)
}

// Repository persists records.
type Repository interface {
	Load(ctx context.Context, id uuid.UUID) (*model.User, error)
	Save(ctx context.Context, u *model.User) error
	IDs(ctx context.Context) ([]uuid.UUID, error)
}

// KitSource lists the live kits.
type KitSource interface {
	Kits() []string
}

// Roster knows which players are connected.
type Roster interface {
	Online() []model.Player
	IsOnline(id uuid.UUID) bool
}

// Messenger delivers a user-visible message, identified by key, to a player.
type Messenger interface {
	Send(ctx context.Context, id uuid.UUID, key string)
}
