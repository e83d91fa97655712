package leaderboard_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/duels/internal/domain/leaderboard"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
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

func user(name string, wins, losses int) *model.User {
	u := model.NewUser(uuid.New(), name, 1000, 10)
	for i := 0; i < wins; i++ {
		u.AddWin()
	}
	for i := 0; i < losses; i++ {
		u.AddLoss()
	}
	return u
}

func TestBoardUpdate(t *testing.T) {
	Convey("Given an empty board", t, func() {
		ctx := context.Background()
		clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		board := leaderboard.New(leaderboard.WithClock(clk.Now))

		Convey("Then nothing should be published", func() {
			So(board.TopWins(), ShouldBeNil)
			So(board.TopLosses(), ShouldBeNil)
			So(board.TopRating("nodebuff"), ShouldBeNil)
		})

		Convey("When two players are aggregated", func() {
			a := user("A", 3, 1)
			b := user("B", 5, 0)
			board.Update(ctx, []*model.User{a, b}, nil)

			Convey("Then wins should be ordered highest first", func() {
				top := board.TopWins()
				So(top, ShouldNotBeNil)
				So(top.Type, ShouldEqual, "Wins")
				So(top.Identifier, ShouldEqual, leaderboard.IdentifierWins)
				So(top.Entries, ShouldResemble, []leaderboard.Pair{{Name: "B", Value: 5}, {Name: "A", Value: 3}})
				So(top.Created, ShouldEqual, clk.Now())
			})

			Convey("Then losses should be published too", func() {
				So(board.TopLosses().Entries[0], ShouldResemble, leaderboard.Pair{Name: "A", Value: 1})
			})
		})

		Convey("When more than ten players are aggregated", func() {
			var users []*model.User
			for i := 0; i < 25; i++ {
				users = append(users, user(fmt.Sprintf("p%02d", i), i%7, 0))
			}
			board.Update(ctx, users, nil)

			Convey("Then the snapshot should be bounded and non-increasing", func() {
				entries := board.TopWins().Entries
				So(len(entries), ShouldEqual, 10)
				for i := 1; i < len(entries); i++ {
					So(entries[i-1].Value, ShouldBeGreaterThanOrEqualTo, entries[i].Value)
				}
			})

			Convey("Then ties should keep encounter order", func() {
				entries := board.TopWins().Entries
				So(entries[0], ShouldResemble, leaderboard.Pair{Name: "p06", Value: 6})
				So(entries[1], ShouldResemble, leaderboard.Pair{Name: "p13", Value: 6})
				So(entries[2], ShouldResemble, leaderboard.Pair{Name: "p20", Value: 6})
			})
		})

		Convey("When counters change inside the refresh window", func() {
			a := user("A", 1, 0)
			board.Update(ctx, []*model.User{a}, nil)
			first := board.TopWins()

			a.AddWin()
			clk.Advance(30 * time.Second)
			board.Update(ctx, []*model.User{a}, nil)

			Convey("Then the snapshot should not be rebuilt", func() {
				So(board.TopWins(), ShouldEqual, first)
				So(board.TopWins().Entries[0].Value, ShouldEqual, 1)
				So(first.NextUpdate(clk.Now(), board.RefreshInterval()), ShouldEqual, 30*time.Second)
			})

			Convey("Then it should be rebuilt once the window passes", func() {
				clk.Advance(30 * time.Second)
				board.Update(ctx, []*model.User{a}, nil)
				So(board.TopWins(), ShouldNotEqual, first)
				So(board.TopWins().Entries[0].Value, ShouldEqual, 2)
				So(first.NextUpdate(clk.Now(), board.RefreshInterval()), ShouldEqual, 0)
			})
		})
	})
}

func TestBoardRatings(t *testing.T) {
	Convey("Given a board tracking two kits", t, func() {
		ctx := context.Background()
		clk := &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		board := leaderboard.New(leaderboard.WithClock(clk.Now), leaderboard.WithSize(5))

		a := user("A", 0, 0)
		a.SetRating("nodebuff", 1100)
		b := user("B", 0, 0)
		users := []*model.User{a, b}

		board.Update(ctx, users, []string{"nodebuff", "sumo"})

		Convey("Then each kit should have a rating snapshot", func() {
			nodebuff := board.TopRating("nodebuff")
			So(nodebuff, ShouldNotBeNil)
			So(nodebuff.Kit, ShouldEqual, "nodebuff")
			So(nodebuff.Identifier, ShouldEqual, leaderboard.IdentifierRating)
			So(nodebuff.Entries, ShouldResemble, []leaderboard.Pair{{Name: "A", Value: 1100}, {Name: "B", Value: 1000}})
			So(board.Kits(), ShouldResemble, []string{"nodebuff", "sumo"})
		})

		Convey("When a kit is removed", func() {
			board.Update(ctx, users, []string{"nodebuff"})

			Convey("Then its snapshot should be evicted on the next pass", func() {
				So(board.TopRating("sumo"), ShouldBeNil)
				So(board.TopRating("nodebuff"), ShouldNotBeNil)
			})
		})
	})
}

func TestBoardSizeCap(t *testing.T) {
	Convey("Given thirty players and a requested size of 25", t, func() {
		ctx := context.Background()
		board := leaderboard.New(leaderboard.WithSize(25))

		users := make([]*model.User, 0, 30)
		for i := 0; i < 30; i++ {
			users = append(users, user(fmt.Sprintf("P%d", i), i, 0))
		}
		board.Update(ctx, users, nil)

		Convey("Then snapshots should hold at most ten rows", func() {
			So(len(board.TopWins().Entries), ShouldEqual, leaderboard.MaxSize)
			So(board.TopWins().Entries[0], ShouldResemble, leaderboard.Pair{Name: "P29", Value: 29})
			So(len(board.TopLosses().Entries), ShouldEqual, leaderboard.MaxSize)
		})
	})
}

func TestBoardRecovers(t *testing.T) {
	Convey("Given a user list containing a nil record", t, func() {
		ctx := context.Background()
		board := leaderboard.New()

		Convey("Then the pass should not panic and nothing should be published", func() {
			So(func() { board.Update(ctx, []*model.User{user("A", 1, 0), nil}, []string{"nodebuff"}) }, ShouldNotPanic)
			So(board.TopWins(), ShouldBeNil)
			So(board.TopRating("nodebuff"), ShouldBeNil)
		})

		Convey("Then a later clean pass should publish", func() {
			board.Update(ctx, []*model.User{user("A", 1, 0), nil}, nil)
			board.Update(ctx, []*model.User{user("A", 1, 0)}, nil)
			So(board.TopWins(), ShouldNotBeNil)
		})
	})
}
