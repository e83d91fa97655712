package syncmap

import (
	"sort"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMap(t *testing.T) {
	Convey("Given an empty map", t, func() {
		m := New[string, int]()

		Convey("When storing and loading", func() {
			m.Store("a", 1)
			v, ok := m.Load("a")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 1)

			_, ok = m.Load("missing")
			So(ok, ShouldBeFalse)
			So(m.Len(), ShouldEqual, 1)
		})

		Convey("When LoadOrStore races for the same key", func() {
			var wg sync.WaitGroup
			winners := make(chan int, 50)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if _, loaded := m.LoadOrStore("k", i); !loaded {
						winners <- i
					}
				}(i)
			}
			wg.Wait()
			close(winners)

			Convey("Then exactly one insert should win", func() {
				var won []int
				for w := range winners {
					won = append(won, w)
				}
				So(len(won), ShouldEqual, 1)
				v, _ := m.Load("k")
				So(v, ShouldEqual, won[0])
			})
		})

		Convey("When deleting conditionally", func() {
			m.Store("name", 7)
			So(m.CompareAndDelete("name", 8), ShouldBeFalse)
			So(m.CompareAndDelete("name", 7), ShouldBeTrue)
			_, ok := m.Load("name")
			So(ok, ShouldBeFalse)
		})

		Convey("When LoadAndDelete is called twice", func() {
			m.Store("x", 3)
			v, ok := m.LoadAndDelete("x")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 3)
			_, ok = m.LoadAndDelete("x")
			So(ok, ShouldBeFalse)
		})

		Convey("When iterating and clearing", func() {
			m.Store("a", 1)
			m.Store("b", 2)
			vals := m.Values()
			sort.Ints(vals)
			So(vals, ShouldResemble, []int{1, 2})

			seen := 0
			for range m.Each() {
				seen++
			}
			So(seen, ShouldEqual, 2)

			m.Clear()
			So(m.Len(), ShouldEqual, 0)
		})
	})
}
