package notice

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/duels/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestMailbox(t *testing.T) {
	Convey("Given an empty mailbox", t, func() {
		ctx := context.Background()
		m := NewMailbox()
		id := uuid.New()

		Convey("Then draining should yield nothing", func() {
			So(m.Drain(id), ShouldBeEmpty)
			So(m.Pending(), ShouldEqual, 0)
		})

		Convey("When notices are sent", func() {
			m.Send(ctx, id, "ERROR.data.load-failure")
			m.Send(ctx, id, "INFO.welcome")

			Convey("Then they should be drained in order exactly once", func() {
				So(m.Pending(), ShouldEqual, 1)
				got := m.Drain(id)
				So(len(got), ShouldEqual, 2)
				So(got[0].Key, ShouldEqual, "ERROR.data.load-failure")
				So(got[1].Key, ShouldEqual, "INFO.welcome")
				So(m.Drain(id), ShouldBeEmpty)
			})
		})

		Convey("When more notices arrive than a player keeps", func() {
			for i := 0; i < maxPerPlayer+5; i++ {
				m.Send(ctx, id, fmt.Sprintf("k%d", i))
			}

			Convey("Then the oldest should be dropped", func() {
				got := m.Drain(id)
				So(len(got), ShouldEqual, maxPerPlayer)
				So(got[0].Key, ShouldEqual, "k5")
			})
		})
	})

	Convey("Given a mailbox with a short TTL", t, func() {
		ctx := context.Background()
		m := NewMailbox(WithTTL(20*time.Millisecond), WithMaxPlayers(2))
		id := uuid.New()
		m.Send(ctx, id, "ERROR.data.load-failure")

		Convey("When the TTL passes", func() {
			time.Sleep(60 * time.Millisecond)

			Convey("Then the notice should be gone", func() {
				So(m.Drain(id), ShouldBeEmpty)
			})
		})

		Convey("When more players than the limit receive notices", func() {
			m.Send(ctx, uuid.New(), "a")
			m.Send(ctx, uuid.New(), "b")

			Convey("Then the cache should stay bounded", func() {
				So(m.Pending(), ShouldBeLessThanOrEqualTo, 2)
			})
		})
	})
}
