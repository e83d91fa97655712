package model_test

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	model "github.com/okian/duels/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestUser(t *testing.T) {
	convey.Convey("Given a new user", t, func() {
		id := uuid.New()
		u := model.NewUser(id, "Alex", 1000, 5)

		convey.Convey("Then it should start empty", func() {
			convey.So(u.ID(), convey.ShouldEqual, id)
			convey.So(u.Name(), convey.ShouldEqual, "Alex")
			convey.So(u.Wins(), convey.ShouldEqual, 0)
			convey.So(u.Losses(), convey.ShouldEqual, 0)
			convey.So(u.Matches(), convey.ShouldBeEmpty)
		})

		convey.Convey("When reading a rating for an unplayed kit", func() {
			convey.So(u.Rating("nodebuff"), convey.ShouldEqual, 1000)

			u.SetRating("nodebuff", 1016)
			convey.So(u.Rating("nodebuff"), convey.ShouldEqual, 1016)
			convey.So(u.Rating("sumo"), convey.ShouldEqual, 1000)
		})

		convey.Convey("When renaming", func() {
			prev := u.SetName("Alexa")
			convey.So(prev, convey.ShouldEqual, "Alex")
			convey.So(u.Name(), convey.ShouldEqual, "Alexa")
		})

		convey.Convey("When adding more matches than the cap", func() {
			for i := 0; i < 6; i++ {
				u.AddMatch(model.Match{Winner: "Alex", Loser: "Bo", Kit: "nodebuff", Health: float64(i)})
			}

			convey.Convey("Then only the newest five should be kept", func() {
				matches := u.Matches()
				convey.So(len(matches), convey.ShouldEqual, 5)
				convey.So(matches[0].Health, convey.ShouldEqual, 1)
				convey.So(matches[4].Health, convey.ShouldEqual, 5)
			})

			convey.Convey("Then lowering the cap should trim again", func() {
				u.Apply(1000, 2)
				convey.So(len(u.Matches()), convey.ShouldEqual, 2)
			})

			convey.Convey("Then a negative cap should keep nothing", func() {
				u.Apply(1000, -1)
				convey.So(u.Matches(), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the returned copies are modified", func() {
			u.SetRating("sumo", 900)
			r := u.Ratings()
			r["sumo"] = 1
			convey.So(u.Rating("sumo"), convey.ShouldEqual, 900)
		})
	})
}

func TestUserJSON(t *testing.T) {
	convey.Convey("Given a user with history", t, func() {
		u := model.NewUser(uuid.New(), "Alex", 1000, 10)
		u.AddWin()
		u.AddWin()
		u.AddLoss()
		u.SetRating("nodebuff", 1032)
		u.AddMatch(model.Match{
			Winner:   "Alex",
			Loser:    "Bo",
			Kit:      "nodebuff",
			Creation: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			Duration: 42 * time.Second,
			Health:   7.5,
		})

		convey.Convey("When encoding and decoding", func() {
			b, err := json.Marshal(u)
			convey.So(err, convey.ShouldBeNil)

			decoded := &model.User{}
			convey.So(json.Unmarshal(b, decoded), convey.ShouldBeNil)
			decoded.Apply(1000, 10)

			convey.Convey("Then the profile should be identical", func() {
				convey.So(cmp.Diff(u.Profile(), decoded.Profile()), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When encoding", func() {
			b, err := json.Marshal(u)
			convey.So(err, convey.ShouldBeNil)

			var raw map[string]any
			convey.So(json.Unmarshal(b, &raw), convey.ShouldBeNil)

			convey.Convey("Then runtime parameters should not be written", func() {
				convey.So(raw, convey.ShouldContainKey, "uuid")
				convey.So(raw, convey.ShouldContainKey, "matches")
				convey.So(len(raw), convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When decoding a file without rating or matches", func() {
			decoded := &model.User{}
			err := json.Unmarshal([]byte(`{"uuid":"`+uuid.NewString()+`","name":"Old"}`), decoded)
			convey.So(err, convey.ShouldBeNil)
			decoded.Apply(1200, 10)

			convey.So(decoded.Rating("any"), convey.ShouldEqual, 1200)
			convey.So(decoded.Matches(), convey.ShouldBeEmpty)
		})
	})
}
