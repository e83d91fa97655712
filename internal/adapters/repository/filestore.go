package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/metrics"
	"github.com/pkg/errors"
)

const fileExt = ".json"

// FileStore keeps each record in <dir>/<uuid>.json.
type FileStore struct {
	dir      string
	fileMode os.FileMode
	dirMode  os.FileMode
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir. The folder is created lazily.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:      dir,
		fileMode: 0o644,
		dirMode:  0o755,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the records folder.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+fileExt)
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.path(id)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithStack(ErrNotFound)
		}
		metrics.RecordErrorByComponent("repository", "read")
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	u := &model.User{}
	if err := json.Unmarshal(b, u); err != nil {
		metrics.RecordErrorByComponent("repository", "corrupt")
		return nil, errors.Wrapf(ErrCorrupt, "%s: %v", path, err)
	}
	if u.ID() != id {
		metrics.RecordErrorByComponent("repository", "corrupt")
		return nil, errors.Wrapf(ErrCorrupt, "%s: holds record %s", path, u.ID())
	}
	return u, nil
}

// Save implements Store. The record is written to a temp file in the same
// folder and renamed over the target.
func (s *FileStore) Save(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, s.dirMode); err != nil {
		metrics.RecordErrorByComponent("repository", "mkdir")
		return errors.Wrapf(err, "creating %s", s.dir)
	}

	b, err := json.Marshal(u)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", u.ID())
	}

	tmp, err := os.CreateTemp(s.dir, u.ID().String()+"-*.tmp")
	if err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return errors.WithStack(err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		metrics.RecordErrorByComponent("repository", "write")
		return errors.Wrapf(err, "writing %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return errors.Wrapf(err, "closing %s", tmpName)
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Rename(tmpName, s.path(u.ID())); err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return errors.Wrapf(err, "replacing %s", s.path(u.ID()))
	}
	return nil
}

// IDs implements Store. Files that are not <uuid>.json are skipped.
// A missing folder yields no ids.
func (s *FileStore) IDs(ctx context.Context) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "listing %s", s.dir)
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, fileExt) {
			continue
		}
		stem := strings.TrimSuffix(name, fileExt)
		id, err := uuid.Parse(stem)
		if err != nil || id.String() != strings.ToLower(stem) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
