package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/matchload/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

// setenv sets key for the current Convey leaf only.
func setenv(key, val string) {
	restore(key)
	_ = os.Setenv(key, val)
}

func unsetenv(key string) {
	restore(key)
	_ = os.Unsetenv(key)
}

func restore(key string) {
	prev, had := os.LookupEnv(key)
	convey.Reset(func() {
		if had {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		setenv(config.EnvDotenv, filepath.Join(dir, "missing.env"))

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then the defaults come back", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.AnalysisWorkers, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When environment variables are set", func() {
			setenv("MATCHLOAD_ADDR", ":8080")
			setenv("MATCHLOAD_DATA_DIR", "/srv/exports")
			setenv("MATCHLOAD_CACHE_TTL", "90s")
			setenv("MATCHLOAD_ANALYSIS_WORKERS", "6")
			setenv("MATCHLOAD_NEWS_API_KEY", "secret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/exports")
				convey.So(cfg.CacheTTL, convey.ShouldEqual, 90*time.Second)
				convey.So(cfg.AnalysisWorkers, convey.ShouldEqual, 6)
				convey.So(cfg.NewsAPIKey, convey.ShouldEqual, "secret")
			})
		})

		convey.Convey("When a YAML file is named", func() {
			path := filepath.Join(dir, "matchload.yaml")
			yamlContent := `
addr: ":9090"
max_cycle_length: 10
refresh_schedule: "0 */2 * * *"
mistral_model: mistral-large
`
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			setenv(config.EnvConfig, path)

			convey.Convey("Then the file values are used", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxCycleLength, convey.ShouldEqual, 10)
				convey.So(cfg.RefreshSchedule, convey.ShouldEqual, "0 */2 * * *")
				convey.So(cfg.MistralModel, convey.ShouldEqual, "mistral-large")
			})

			convey.Convey("Then the environment still wins", func() {
				setenv("MATCHLOAD_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When a dotenv file holds secrets", func() {
			path := filepath.Join(dir, "test.env")
			convey.So(os.WriteFile(path, []byte("MATCHLOAD_MISTRAL_API_KEY=from-dotenv\n"), 0o600), convey.ShouldBeNil)
			setenv(config.EnvDotenv, path)
			unsetenv("MATCHLOAD_MISTRAL_API_KEY")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they reach the config", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MistralAPIKey, convey.ShouldEqual, "from-dotenv")
			})
		})

		convey.Convey("When the YAML file does not exist", func() {
			setenv(config.EnvConfig, filepath.Join(dir, "nope.yaml"))
			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is invalid", func() {
			setenv("MATCHLOAD_ANALYSIS_QUEUE_SIZE", "0")
			_, err := config.Load(ctx)

			convey.Convey("Then loading reports invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
