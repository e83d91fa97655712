package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	service "github.com/okian/duels/internal/app"
	"github.com/okian/duels/internal/config"
	"github.com/okian/duels/internal/domain/model"
	"github.com/okian/duels/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	cfg.WorkerCount = 2
	cfg.QueueSize = 1000
	cfg.Kits = []string{"nodebuff", "sumo"}
	cfg.TopInitialDelay = 10 * time.Millisecond
	cfg.TopPeriod = 20 * time.Millisecond
	cfg.TopRefreshInterval = 50 * time.Millisecond
	return cfg
}

// eventually polls cond until it holds or the timeout elapses.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with no config", t, func() {
		svc := service.New(nil)

		Convey("Then it should fall back to defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Config().Addr, ShouldEqual, ":9080")
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.ModuleStates(), ShouldBeEmpty)
			So(svc.Disabled(), ShouldBeTrue)
		})
	})
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		svc := service.New(testConfig(t))
		ctx := context.Background()

		Convey("Then operations report it is not started", func() {
			So(errors.Is(svc.Connect(ctx, model.Player{ID: uuid.New(), Name: "Steve"}), service.ErrNotStarted), ShouldBeTrue)
			So(errors.Is(svc.Reload(ctx), service.ErrNotStarted), ShouldBeTrue)

			_, err := svc.RecordMatch(ctx, model.MatchResult{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, ok := svc.TopWins()
			So(ok, ShouldBeFalse)
			So(svc.User("Steve"), ShouldBeNil)
			So(svc.Kits(), ShouldBeEmpty)
			So(svc.ReloadableNames(), ShouldBeEmpty)
		})

		Convey("Then stopping is a no-op", func() {
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(testConfig(t))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["online"], ShouldEqual, 0)
				So(stats["kits"], ShouldEqual, 2)
				So(stats["disabled"], ShouldEqual, false)
				So(stats["modules"], ShouldResemble, map[string]string{
					"Config": "loaded", "KitManager": "loaded", "UserManager": "loaded",
				})
			})

			Convey("And module states should be reported", func() {
				So(svc.ModuleStates()["UserManager"], ShouldEqual, "loaded")
				So(svc.Disabled(), ShouldBeFalse)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(testConfig(t))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			err := svc.Stop(ctx)

			Convey("Then it should stop successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And stopping again is a no-op", func() {
				So(svc.Stop(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_Modules(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(testConfig(t))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Then every module is reloadable in load order", func() {
			So(svc.ReloadableNames(), ShouldResemble, []string{"Config", "KitManager", "UserManager"})
		})

		Convey("Then completion ignores case", func() {
			So(svc.Complete("u"), ShouldResemble, []string{"UserManager"})
			So(svc.Complete("K"), ShouldResemble, []string{"KitManager"})
			So(svc.Complete("x"), ShouldBeEmpty)
		})

		Convey("When reloading a module by a lowercase name", func() {
			name, err := svc.ReloadModule(ctx, "usermanager")

			Convey("Then the registered name is returned", func() {
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "UserManager")
			})
		})

		Convey("When reloading an unknown module", func() {
			_, err := svc.ReloadModule(ctx, "nope")

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_Kits(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(testConfig(t))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When adding a kit", func() {
			k, err := svc.AddKit("gapple")

			Convey("Then it is listed", func() {
				So(err, ShouldBeNil)
				So(k.Name, ShouldEqual, "gapple")
				So(len(svc.Kits()), ShouldEqual, 3)
			})
		})

		Convey("When removing a kit", func() {
			So(svc.RemoveKit("sumo"), ShouldBeNil)

			Convey("Then it is gone", func() {
				So(len(svc.Kits()), ShouldEqual, 1)
				So(svc.RemoveKit("sumo"), ShouldNotBeNil)
			})
		})
	})
}
