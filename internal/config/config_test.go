package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/schedluck/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Mode, convey.ShouldEqual, config.ModeSequential)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.ChunkSize, convey.ShouldEqual, uint64(1<<16))
			convey.So(cfg.Weeks, convey.ShouldEqual, 0)
			convey.So(cfg.Addr, convey.ShouldBeEmpty)
			convey.So(cfg.DatabasePath, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"mode", func(c *config.Config) { c.Mode = "distributed" }},
			{"weeks", func(c *config.Config) { c.Weeks = -1 }},
			{"worker_count", func(c *config.Config) { c.WorkerCount = 0 }},
			{"chunk_size", func(c *config.Config) { c.ChunkSize = 0 }},
			{"linger", func(c *config.Config) { c.Linger = -time.Second }},
			{"log_format", func(c *config.Config) { c.LogFormat = "xml" }},
		}

		for _, tc := range cases {
			cfg := config.New()
			tc.mutate(cfg)
			err := cfg.Validate()

			convey.Convey("Then "+tc.name+" is rejected as invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
