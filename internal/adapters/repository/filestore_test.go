package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/okian/duels/internal/adapters/repository"
	"github.com/okian/duels/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileStore(t *testing.T) {
	Convey("Given a file store in an empty folder", t, func() {
		ctx := context.Background()
		dir := filepath.Join(t.TempDir(), "users")
		store := repository.NewFileStore(dir)

		Convey("When loading an unknown id", func() {
			_, err := store.Load(ctx, uuid.New())

			Convey("Then it should report not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When listing before anything was saved", func() {
			ids, err := store.IDs(ctx)
			So(err, ShouldBeNil)
			So(ids, ShouldBeEmpty)
		})

		Convey("When saving and loading a record", func() {
			u := model.NewUser(uuid.New(), "Alex", 1000, 10)
			u.AddWin()
			u.SetRating("nodebuff", 1016)
			u.AddMatch(model.Match{
				Winner:   "Alex",
				Loser:    "Bo",
				Kit:      "nodebuff",
				Creation: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
				Duration: 90 * time.Second,
				Health:   12,
			})

			So(store.Save(ctx, u), ShouldBeNil)
			loaded, err := store.Load(ctx, u.ID())

			Convey("Then the round trip should keep every field", func() {
				So(err, ShouldBeNil)
				So(cmp.Diff(u.Profile(), loaded.Profile()), ShouldBeEmpty)
			})

			Convey("Then the file should be named after the id", func() {
				_, err := os.Stat(filepath.Join(dir, u.ID().String()+".json"))
				So(err, ShouldBeNil)
			})

			Convey("Then saving again should overwrite", func() {
				u.AddLoss()
				So(store.Save(ctx, u), ShouldBeNil)
				again, err := store.Load(ctx, u.ID())
				So(err, ShouldBeNil)
				So(again.Losses(), ShouldEqual, 1)

				entries, _ := os.ReadDir(dir)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When a record file is corrupt", func() {
			id := uuid.New()
			So(os.MkdirAll(dir, 0o755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, id.String()+".json"), []byte("{not json"), 0o644), ShouldBeNil)

			_, err := store.Load(ctx, id)

			Convey("Then it should report corrupt", func() {
				So(errors.Is(err, repository.ErrCorrupt), ShouldBeTrue)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeFalse)
			})
		})

		Convey("When a file holds a different id", func() {
			other := model.NewUser(uuid.New(), "Other", 1000, 10)
			So(store.Save(ctx, other), ShouldBeNil)
			id := uuid.New()
			So(os.Rename(filepath.Join(dir, other.ID().String()+".json"), filepath.Join(dir, id.String()+".json")), ShouldBeNil)

			_, err := store.Load(ctx, id)
			So(errors.Is(err, repository.ErrCorrupt), ShouldBeTrue)
		})

		Convey("When the folder holds unrelated files", func() {
			a := model.NewUser(uuid.New(), "A", 1000, 10)
			b := model.NewUser(uuid.New(), "B", 1000, 10)
			So(store.Save(ctx, a), ShouldBeNil)
			So(store.Save(ctx, b), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "not-a-uuid.json"), []byte("{}"), 0o644), ShouldBeNil)
			So(os.Mkdir(filepath.Join(dir, uuid.NewString()+".json"), 0o755), ShouldBeNil)

			ids, err := store.IDs(ctx)

			Convey("Then only well-formed record names should be listed", func() {
				So(err, ShouldBeNil)
				So(len(ids), ShouldEqual, 2)
				So(ids, ShouldContain, a.ID())
				So(ids, ShouldContain, b.ID())
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.Load(cctx, uuid.New())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
