// Package repository persists player records, one file per player.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/domain/model"
)

// Store provides read/write access to persisted player records.
type Store interface {
	// Load reads the record for id.
	// Returns ErrNotFound when no file exists and ErrCorrupt when it cannot be decoded.
	Load(ctx context.Context, id uuid.UUID) (*model.User, error)

	// Save fully overwrites the record file for u.
	Save(ctx context.Context, u *model.User) error

	// IDs lists the ids of all well-formed record files.
	IDs(ctx context.Context) ([]uuid.UUID, error)
}
