package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/duels/internal/adapters/mq/queue"
	"github.com/okian/duels/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestScheduler(t *testing.T) {
	Convey("Given a started scheduler", t, func() {
		ctx := context.Background()
		s := New(WithWorkerCount(4), WithQueueSize(100))
		s.Start(ctx)
		defer func() { _ = s.Stop(ctx) }()

		Convey("When tasks are submitted to the main executor", func() {
			var mu sync.Mutex
			var order []int
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				i := i
				So(s.Sync("ordered", func(context.Context) {
					defer wg.Done()
					mu.Lock()
					order = append(order, i)
					mu.Unlock()
				}), ShouldBeNil)
			}
			wg.Wait()

			Convey("Then they should run in submission order", func() {
				for i := range order {
					So(order[i], ShouldEqual, i)
				}
			})
		})

		Convey("When a background task hands off to the main executor", func() {
			done := make(chan string, 1)
			So(s.Async("load", func(context.Context) {
				_ = s.Sync("publish", func(context.Context) { done <- "published" })
			}), ShouldBeNil)

			var got string
			select {
			case got = <-done:
			case <-time.After(2 * time.Second):
			}
			So(got, ShouldEqual, "published")
		})

		Convey("When a repeating task is scheduled and cancelled", func() {
			var ticks atomic.Int32
			id, err := s.SyncRepeat("top", func(context.Context) { ticks.Add(1) }, 10*time.Millisecond, 10*time.Millisecond)
			So(err, ShouldBeNil)

			So(waitFor(func() bool { return ticks.Load() >= 3 }), ShouldBeTrue)

			s.Cancel(id)
			time.Sleep(30 * time.Millisecond)
			after := ticks.Load()
			time.Sleep(50 * time.Millisecond)

			Convey("Then it should stop ticking", func() {
				So(ticks.Load(), ShouldEqual, after)
			})

			Convey("Then cancelling again should be a no-op", func() {
				So(func() { s.Cancel(id) }, ShouldNotPanic)
			})
		})

		Convey("When the period is not positive", func() {
			_, err := s.SyncRepeat("bad", func(context.Context) {}, 0, 0)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSchedulerStopped(t *testing.T) {
	Convey("Given a stopped scheduler", t, func() {
		ctx := context.Background()
		s := New(WithWorkerCount(1), WithQueueSize(10))
		s.Start(ctx)
		So(s.Stop(ctx), ShouldBeNil)

		Convey("Then submissions should be rejected", func() {
			So(errors.Is(s.Async("late", func(context.Context) {}), queue.ErrRejected), ShouldBeTrue)
			So(errors.Is(s.Sync("late", func(context.Context) {}), queue.ErrRejected), ShouldBeTrue)
			_, err := s.SyncRepeat("late", func(context.Context) {}, 0, time.Second)
			So(errors.Is(err, queue.ErrRejected), ShouldBeTrue)
		})
	})
}

func TestSchedulerQueueFull(t *testing.T) {
	Convey("Given a scheduler that was never started", t, func() {
		s := New(WithWorkerCount(1), WithQueueSize(1))
		defer func() { _ = s.Stop(context.Background()) }()

		Convey("When more tasks are queued than fit", func() {
			So(s.Async("a", func(context.Context) {}), ShouldBeNil)
			err := s.Async("b", func(context.Context) {})

			Convey("Then the overflow should be rejected", func() {
				So(errors.Is(err, queue.ErrRejected), ShouldBeTrue)
				_, bg := s.QueueLengths()
				So(bg, ShouldEqual, 1)
			})
		})
	})
}
