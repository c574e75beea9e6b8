package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/schedluck/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCHEDLUCK_MODE", "parallel")
			_ = os.Setenv("SCHEDLUCK_WORKER_COUNT", "16")
			_ = os.Setenv("SCHEDLUCK_CHUNK_SIZE", "1024")
			_ = os.Setenv("SCHEDLUCK_WEEKS", "13")
			_ = os.Setenv("SCHEDLUCK_LINGER", "30s")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Mode, convey.ShouldEqual, config.ModeParallel)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.ChunkSize, convey.ShouldEqual, uint64(1024))
				convey.So(cfg.Weeks, convey.ShouldEqual, 13)
				convey.So(cfg.Linger, convey.ShouldEqual, 30*time.Second)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
league_file: "league.yaml"
mode: parallel
worker_count: 24
addr: ":9090"
database_path: "results.db"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCHEDLUCK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LeagueFile, convey.ShouldEqual, "league.yaml")
				convey.So(cfg.Mode, convey.ShouldEqual, config.ModeParallel)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatabasePath, convey.ShouldEqual, "results.db")
				convey.So(cfg.ChunkSize, convey.ShouldEqual, uint64(1<<16)) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
worker_count: 24
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCHEDLUCK_CONFIG", tmpFile)
			_ = os.Setenv("SCHEDLUCK_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")   // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32) // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCHEDLUCK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SCHEDLUCK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown mode", func() {
			_ = os.Setenv("SCHEDLUCK_MODE", "distributed")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "distributed")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SCHEDLUCK_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			cfg, err := config.Load(cctx)

			convey.Convey("Then loading is skipped", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// createTempConfigFile creates a temporary YAML config file with the given content.
func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "schedluck_config_*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}

// clearConfigEnvVars clears all config-related environment variables.
func clearConfigEnvVars() {
	envVars := []string{
		"SCHEDLUCK_CONFIG",
		"SCHEDLUCK_LOG_LEVEL",
		"SCHEDLUCK_LOG_FORMAT",
		"SCHEDLUCK_LEAGUE_FILE",
		"SCHEDLUCK_WEEKS",
		"SCHEDLUCK_MODE",
		"SCHEDLUCK_WORKER_COUNT",
		"SCHEDLUCK_CHUNK_SIZE",
		"SCHEDLUCK_ADDR",
		"SCHEDLUCK_LINGER",
		"SCHEDLUCK_DATABASE_PATH",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}
