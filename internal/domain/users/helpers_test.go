package users_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/adapters/mq/queue"
	"github.com/okian/duels/internal/adapters/mq/scheduler"
	"github.com/okian/duels/internal/adapters/repository"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// inlineExec runs every task on the calling goroutine. Repeating tasks only
// run when trigger is called; background tasks under a held name wait for
// release.
type inlineExec struct {
	mu      sync.Mutex
	next    scheduler.TaskID
	repeats map[scheduler.TaskID]func(context.Context)
	held    map[string][]func(context.Context)
	reject  bool
}

func newInlineExec() *inlineExec {
	return &inlineExec{
		repeats: map[scheduler.TaskID]func(context.Context){},
		held:    map[string][]func(context.Context){},
	}
}

func (e *inlineExec) Async(name string, fn func(context.Context)) error {
	e.mu.Lock()
	if fns, ok := e.held[name]; ok {
		e.held[name] = append(fns, fn)
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.run(fn)
}

func (e *inlineExec) Sync(_ string, fn func(context.Context)) error { return e.run(fn) }

// hold parks background tasks named name until release.
func (e *inlineExec) hold(name string) {
	e.mu.Lock()
	e.held[name] = nil
	e.mu.Unlock()
}

// release runs the parked tasks named name and stops holding it.
func (e *inlineExec) release(name string) {
	e.mu.Lock()
	fns := e.held[name]
	delete(e.held, name)
	e.mu.Unlock()
	for _, fn := range fns {
		fn(context.Background())
	}
}

func (e *inlineExec) run(fn func(context.Context)) error {
	e.mu.Lock()
	reject := e.reject
	e.mu.Unlock()
	if reject {
		return queue.ErrRejected
	}
	fn(context.Background())
	return nil
}

func (e *inlineExec) SyncRepeat(_ string, fn func(context.Context), _, _ time.Duration) (scheduler.TaskID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	e.repeats[e.next] = fn
	return e.next, nil
}

func (e *inlineExec) Cancel(id scheduler.TaskID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.repeats, id)
}

func (e *inlineExec) active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.repeats)
}

func (e *inlineExec) trigger() {
	e.mu.Lock()
	fns := make([]func(context.Context), 0, len(e.repeats))
	for _, fn := range e.repeats {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn(context.Background())
	}
}

// faultyRepo wraps a FileStore and can be told to fail.
type faultyRepo struct {
	*repository.FileStore
	mu      sync.Mutex
	loadErr error
	saveErr error
	saves   int
}

func (r *faultyRepo) Load(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	err := r.loadErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.FileStore.Load(ctx, id)
}

func (r *faultyRepo) Save(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	r.saves++
	err := r.saveErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.FileStore.Save(ctx, u)
}

type roster struct {
	mu     sync.Mutex
	online map[uuid.UUID]model.Player
}

func newRoster() *roster { return &roster{online: map[uuid.UUID]model.Player{}} }

func (r *roster) join(p model.Player) {
	r.mu.Lock()
	r.online[p.ID] = p
	r.mu.Unlock()
}

func (r *roster) leave(p model.Player) {
	r.mu.Lock()
	delete(r.online, p.ID)
	r.mu.Unlock()
}

func (r *roster) Online() []model.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Player, 0, len(r.online))
	for _, p := range r.online {
		out = append(out, p)
	}
	return out
}

func (r *roster) IsOnline(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.online[id]
	return ok
}

type kits struct {
	mu    sync.Mutex
	names []string
}

func (k *kits) set(names ...string) {
	k.mu.Lock()
	k.names = names
	k.mu.Unlock()
}

func (k *kits) Kits() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.names...)
}

type notice struct {
	id  uuid.UUID
	key string
}

type messenger struct {
	mu   sync.Mutex
	sent []notice
}

func (m *messenger) Send(_ context.Context, id uuid.UUID, key string) {
	m.mu.Lock()
	m.sent = append(m.sent, notice{id: id, key: key})
	m.mu.Unlock()
}

func (m *messenger) list() []notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notice(nil), m.sent...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
