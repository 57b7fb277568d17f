package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchload/internal/adapters/csvsource"
	"github.com/okian/matchload/internal/adapters/http/api"
	"github.com/okian/matchload/internal/config"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
	"github.com/okian/matchload/pkg/logger"
	"github.com/okian/matchload/pkg/metrics"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// writeExport generates a GPS export into dir and returns its path.
func writeExport(dir string) string {
	path := filepath.Join(dir, csvsource.GPSFile)
	err := runGenerate(io.Discard, generateOptions{out: path, seasons: 2, last: 2024, seed: 5})
	convey.So(err, convey.ShouldBeNil)
	return path
}

func cycleLengths(path string) []int {
	f, err := os.Open(path)
	convey.So(err, convey.ShouldBeNil)
	defer f.Close()
	sessions, err := csvsource.ReadGPS(f)
	convey.So(err, convey.ShouldBeNil)
	return loadcalendar.CycleDurations(gps.ToDailyRecords(sessions))
}

func TestGenerateCommand(t *testing.T) {
	convey.Convey("Given the generate command", t, func() {
		convey.Convey("When writing to stdout twice with one seed", func() {
			var a, b bytes.Buffer
			convey.So(runGenerate(&a, generateOptions{out: "-", seasons: 1, last: 2023, seed: 9}), convey.ShouldBeNil)
			convey.So(runGenerate(&b, generateOptions{out: "-", seasons: 1, last: 2023, seed: 9}), convey.ShouldBeNil)

			convey.Convey("Then the exports are identical CSV", func() {
				convey.So(a.String(), convey.ShouldEqual, b.String())
				sessions, err := csvsource.ReadGPS(&a)
				convey.So(err, convey.ShouldBeNil)
				convey.So(gps.Seasons(sessions), convey.ShouldResemble, []string{"2023/2024"})
			})
		})

		convey.Convey("When writing to a nested file", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "nested", "gps.csv")
			var out bytes.Buffer
			err := runGenerate(&out, generateOptions{out: path, seasons: 2, last: 2024, seed: 1})

			convey.Convey("Then the file exists and the summary names both seasons", func() {
				convey.So(err, convey.ShouldBeNil)
				_, statErr := os.Stat(path)
				convey.So(statErr, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "2023/2024 to 2024/2025")
			})
		})

		convey.Convey("When the season count is not positive", func() {
			err := runGenerate(io.Discard, generateOptions{out: "-", seasons: 0, last: 2023})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestCyclesCommand(t *testing.T) {
	convey.Convey("Given a generated GPS export", t, func() {
		path := writeExport(t.TempDir())
		lengths := cycleLengths(path)
		convey.So(lengths, convey.ShouldNotBeEmpty)

		convey.Convey("When printing a length present in the data", func() {
			var out bytes.Buffer
			err := runCycles(&out, cyclesOptions{file: path, length: lengths[len(lengths)-1], kpis: []string{gps.Distance}})

			convey.Convey("Then a table with day labels is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldContainSubstring, "label")
				convey.So(out.String(), convey.ShouldContainSubstring, gps.Distance)
				convey.So(out.String(), convey.ShouldContainSubstring, "-day cycles")
			})
		})

		convey.Convey("When normalizing one season", func() {
			var out bytes.Buffer
			err := runCycles(&out, cyclesOptions{file: path, season: "2024/2025", length: lengths[0], normalize: true})
			convey.So(err, convey.ShouldBeNil)
			convey.So(out.String(), convey.ShouldNotBeEmpty)
		})

		convey.Convey("When the length has no cycles", func() {
			var out bytes.Buffer
			err := runCycles(&out, cyclesOptions{file: path, length: 99})

			convey.Convey("Then the lengths present are listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldStartWith, "no 99-day cycles; lengths present:")
			})
		})

		convey.Convey("When the options are invalid", func() {
			convey.So(runCycles(io.Discard, cyclesOptions{file: path, length: 0}), convey.ShouldNotBeNil)
			convey.So(runCycles(io.Discard, cyclesOptions{file: path, length: 7, kpis: []string{"vibes"}}), convey.ShouldNotBeNil)
			convey.So(runCycles(io.Discard, cyclesOptions{file: filepath.Join(t.TempDir(), "missing.csv"), length: 7}), convey.ShouldNotBeNil)
		})
	})
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)

		convey.Convey("Then every subcommand is registered", func() {
			for _, name := range []string{"serve", "cycles", "generate", "mcp"} {
				cmd, _, err := root.Find([]string{name})
				convey.So(err, convey.ShouldBeNil)
				convey.So(cmd.Name(), convey.ShouldEqual, name)
			}
		})

		convey.Convey("When running generate through the CLI", func() {
			root.SetArgs([]string{"generate", "--seed", "3"})
			err := root.Execute()

			convey.Convey("Then CSV is written to the command output", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.String(), convey.ShouldStartWith, "date,")
			})
		})

		convey.Convey("When cycles misses a required flag", func() {
			root.SetArgs([]string{"cycles", "--length", "7"})
			convey.So(root.Execute(), convey.ShouldNotBeNil)
		})
	})
}

func TestServeWiring(t *testing.T) {
	convey.Convey("Given a service built from default config", t, func() {
		dir := t.TempDir()
		writeExport(dir)
		cfg := config.New()
		cfg.DataDir = dir
		cfg.RefreshSchedule = ""

		svc, err := newService(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(context.Background(), svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then the API reads the data directory", func() {
			w := get("/api/seasons")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "2024/2025")
		})

		convey.Convey("And the docs and API reference are mounted", func() {
			convey.So(get("/docs/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/dashboard").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("And analysis is unavailable without an API key", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/analysis", bytes.NewBufferString(`{"mode":"gps"}`))
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	convey.Convey("Given an invalid recovery date", t, func() {
		cfg := config.New()
		cfg.RecoveryAISince = "August"
		_, err := newService(cfg, logger.Get())
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		done := make(chan struct{})
		go func() {
			startSystemMetricsUpdater(ctx)
			close(done)
		}()

		convey.Convey("Then it stops with its context", func() {
			select {
			case <-done:
			case <-time.After(time.Second):
				convey.So("updater still running", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestConfigureMetrics(t *testing.T) {
	convey.Convey("Given metrics settings from config", t, func() {
		convey.Reset(func() { metrics.Configure() })
		cfg := config.New()
		cfg.MetricsNamespace = "club"
		cfg.PlayerID = "Cole Palmer"
		configureMetrics(cfg)
		metrics.RecordCacheMiss("datasets")

		convey.Convey("Then /healthz exposes the configured series", func() {
			w := httptest.NewRecorder()
			api.NewHealthHandler().HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `club_cache_misses_total{cache="datasets",player="Cole Palmer"} 1`)
		})
	})
}
