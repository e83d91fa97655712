package types_test

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	types "github.com/okian/duels/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLeaderboardJSON(t *testing.T) {
	Convey("Given a wins leaderboard", t, func() {
		lb := types.Leaderboard{
			Type:         "Wins",
			Identifier:   "wins",
			Entries:      []types.Entry{{Rank: 1, Name: "B", Value: 5}},
			Created:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			NextUpdateMS: 1500,
		}

		Convey("When encoding", func() {
			b, err := json.Marshal(lb)
			So(err, ShouldBeNil)

			var raw map[string]any
			So(json.Unmarshal(b, &raw), ShouldBeNil)

			Convey("Then the kit should be omitted and field names snake cased", func() {
				So(raw, ShouldNotContainKey, "kit")
				So(raw["next_update_ms"], ShouldEqual, 1500.0)
				So(raw["identifier"], ShouldEqual, "wins")
			})
		})
	})
}
