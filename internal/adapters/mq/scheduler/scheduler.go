// Package scheduler hosts the main executor, the background worker pool
// and cancelable repeating tasks.
//
// The main executor runs one task at a time in submission order. Code that
// must not race with other main tasks (record publication, hooks, notices)
// is submitted there. Blocking work such as disk I/O belongs on the
// background executor.
package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/duels/internal/adapters/mq/queue"
	"github.com/okian/duels/internal/adapters/mq/worker"
	"github.com/okian/duels/pkg/logger"
	"github.com/okian/duels/pkg/metrics"
)

const (
	mainName       = "main"
	backgroundName = "background"
)

// TaskID identifies a repeating task.
type TaskID uint64

type repeating struct {
	name string
	stop chan struct{}
}

// Scheduler owns every goroutine that runs tasks.
type Scheduler struct {
	workerCount int
	queueSize   int

	mainQueue *queue.InMemoryQueue
	bgQueue   *queue.InMemoryQueue
	mainPool  *worker.Pool
	bgPool    *worker.Pool

	mu      sync.Mutex
	repeats map[TaskID]*repeating
	nextID  atomic.Uint64
	wg      sync.WaitGroup

	started atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	logger logger.Logger
}

// New creates a scheduler. Call Start before submitting tasks.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		workerCount: runtime.NumCPU(),
		queueSize:   100_000,
		repeats:     make(map[TaskID]*repeating),
		logger:      logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mainQueue = queue.NewInMemoryQueue(queue.WithName(mainName), queue.WithCapacity(s.queueSize))
	s.bgQueue = queue.NewInMemoryQueue(queue.WithName(backgroundName), queue.WithCapacity(s.queueSize))
	s.mainPool = worker.NewPool(mainName, 1, s.mainQueue)
	s.bgPool = worker.NewPool(backgroundName, s.workerCount, s.bgQueue)
	return s
}

// Start launches the executors. Tasks run with ctx.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mainPool.Start(s.ctx)
	s.bgPool.Start(s.ctx)
	s.logger.Info(ctx, "scheduler started", logger.Int("workers", s.bgPool.Size()))
}

// Async runs fn on a background worker.
func (s *Scheduler) Async(name string, fn func(ctx context.Context)) error {
	return s.bgQueue.Enqueue(s.context(), queue.Task{Name: name, Run: fn})
}

// Sync runs fn on the main executor.
func (s *Scheduler) Sync(name string, fn func(ctx context.Context)) error {
	return s.mainQueue.Enqueue(s.context(), queue.Task{Name: name, Run: fn})
}

// SyncRepeat runs fn on the main executor after delay and then every period
// until cancelled. A tick that cannot be queued is skipped.
func (s *Scheduler) SyncRepeat(name string, fn func(ctx context.Context), delay, period time.Duration) (TaskID, error) {
	if period <= 0 {
		return 0, fmt.Errorf("repeat %s: period must be positive", name)
	}
	if s.mainQueue.IsClosed() {
		return 0, fmt.Errorf("%w: scheduler stopped", queue.ErrRejected)
	}

	id := TaskID(s.nextID.Add(1))
	r := &repeating{name: name, stop: make(chan struct{})}

	s.mu.Lock()
	s.repeats[id] = r
	metrics.UpdateRepeatingTasks(len(s.repeats))
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runRepeating(r, fn, delay, period)
	return id, nil
}

func (s *Scheduler) runRepeating(r *repeating, fn func(ctx context.Context), delay, period time.Duration) {
	defer s.wg.Done()
	ctx := s.context()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-r.stop:
		return
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	tick := func() {
		if err := s.Sync(r.name, func(ctx context.Context) {
			select {
			case <-r.stop:
				return
			default:
			}
			fn(ctx)
		}); err != nil {
			s.logger.Debug(ctx, "repeating tick skipped", logger.String("task", r.name), logger.Error(err))
		}
	}
	tick()

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

// Cancel stops a repeating task. Ticks already queued are dropped.
// Unknown ids are ignored.
func (s *Scheduler) Cancel(id TaskID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.repeats[id]
	if !ok {
		return
	}
	close(r.stop)
	delete(s.repeats, id)
	metrics.UpdateRepeatingTasks(len(s.repeats))
}

// QueueLengths reports the number of tasks waiting on each executor.
func (s *Scheduler) QueueLengths() (main, background int) {
	ctx := s.context()
	return s.mainQueue.Len(ctx), s.bgQueue.Len(ctx)
}

// Stop cancels repeating tasks, then drains both executors.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	for id, r := range s.repeats {
		close(r.stop)
		delete(s.repeats, id)
	}
	metrics.UpdateRepeatingTasks(0)
	s.mu.Unlock()
	s.wg.Wait()

	if !s.started.Load() {
		_ = s.bgQueue.Close()
		_ = s.mainQueue.Close()
		return nil
	}

	bgErr := s.bgPool.Shutdown(ctx)
	mainErr := s.mainPool.Shutdown(ctx)
	if s.cancel != nil {
		s.cancel()
	}
	if bgErr != nil {
		return bgErr
	}
	return mainErr
}

func (s *Scheduler) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}
