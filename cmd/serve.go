package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/matchload/internal/adapters/external"
	"github.com/okian/matchload/internal/adapters/http/api"
	"github.com/okian/matchload/internal/adapters/http/site"
	"github.com/okian/matchload/internal/adapters/http/swagger"
	service "github.com/okian/matchload/internal/app"
	"github.com/okian/matchload/internal/config"
	"github.com/okian/matchload/pkg/logger"
	"github.com/okian/matchload/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, dashboard and docs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	configureMetrics(cfg)

	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newService wires the upstream clients named by cfg into a service. News
// and analysis stay disabled without their API keys.
// configureMetrics applies the metrics settings. It runs before anything
// records so every series lands on the configured registry.
func configureMetrics(cfg *config.Config) {
	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithConstLabels(map[string]string{"player": cfg.PlayerID}),
	)
}

func newService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	since, err := cfg.RecoverySince()
	if err != nil {
		return nil, err
	}
	common := []external.Option{
		external.WithTimeout(cfg.HTTPTimeout),
		external.WithUserAgent(cfg.UserAgent),
	}
	with := func(extra ...external.Option) []external.Option {
		return append(append([]external.Option{}, common...), extra...)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithDataDir(cfg.DataDir),
		service.WithCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		service.WithRefreshSchedule(cfg.RefreshSchedule),
		service.WithWorkerCount(cfg.AnalysisWorkers),
		service.WithQueueSize(cfg.AnalysisQueueSize),
		service.WithMemoSize(cfg.AnalysisMemoSize),
		service.WithMaxCycleLength(cfg.MaxCycleLength),
		service.WithRecoverySince(since),
		service.WithDefaultPlayer(cfg.PlayerID),
		service.WithSquad(external.NewWikipedia(cfg.WikipediaSquadURL, with(external.WithCacheTTL(cfg.BioTTL))...)),
		service.WithEntities(external.NewWikidata(with(external.WithCacheTTL(cfg.BioTTL))...)),
		// Transfermarkt keeps its browser User-Agent.
		service.WithInjurySource(external.NewTransfermarkt(external.WithTimeout(cfg.HTTPTimeout), external.WithCacheTTL(cfg.InjuryTTL))),
	}
	if cfg.NewsAPIKey != "" {
		opts = append(opts, service.WithNewsSource(external.NewNews(cfg.NewsAPIKey,
			with(external.WithBaseURL(cfg.NewsBaseURL), external.WithCacheTTL(cfg.NewsTTL))...)))
	} else {
		log.Warn(context.Background(), "news_api_key not set; news disabled")
	}
	if cfg.MistralAPIKey != "" {
		opts = append(opts, service.WithCompleter(external.NewMistral(cfg.MistralAPIKey, cfg.MistralModel,
			with(external.WithBaseURL(cfg.MistralBaseURL))...)))
	} else {
		log.Warn(context.Background(), "mistral_api_key not set; analysis disabled")
	}
	return service.New(opts...), nil
}

// newMux registers the API, the API reference and the docs pages.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
