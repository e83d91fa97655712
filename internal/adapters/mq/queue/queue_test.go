package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func noop(context.Context) {}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2), WithName("test"))

		Convey("Then it should start empty", func() {
			So(q.Len(ctx), ShouldEqual, 0)
			So(q.Name(), ShouldEqual, "test")
		})

		Convey("When tasks are enqueued", func() {
			So(q.Enqueue(ctx, Task{Name: "a", Run: noop}), ShouldBeNil)
			So(q.Enqueue(ctx, Task{Name: "b", Run: noop}), ShouldBeNil)

			Convey("Then a third should be rejected", func() {
				err := q.Enqueue(ctx, Task{Name: "c", Run: noop})
				So(errors.Is(err, ErrRejected), ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then they should come out in order with a timestamp", func() {
				ch := q.Dequeue(ctx)
				first := <-ch
				second := <-ch
				So(first.Name, ShouldEqual, "a")
				So(second.Name, ShouldEqual, "b")
				So(first.Enqueued.IsZero(), ShouldBeFalse)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, Task{Name: "left", Run: noop}), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue should be rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, Task{Run: noop}), ErrRejected), ShouldBeTrue)
			})

			Convey("Then queued tasks should still drain before the channel closes", func() {
				var names []string
				for task := range q.Dequeue(ctx) {
					names = append(names, task.Name)
				}
				So(names, ShouldResemble, []string{"left"})
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(errors.Is(q.Enqueue(cctx, Task{Run: noop}), ErrRejected), ShouldBeTrue)
		})
	})
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	Convey("Given concurrent producers", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(1000))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = q.Enqueue(ctx, Task{Run: noop})
				}
			}()
		}
		wg.Wait()

		Convey("Then every task should be queued", func() {
			So(q.Len(ctx), ShouldEqual, 1000)
		})
	})
}
