// Package service provides the business service behind the HTTP API, the
// CLI and the MCP tools.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/matchload/internal/adapters/cache"
	"github.com/okian/matchload/internal/adapters/mq/queue"
	"github.com/okian/matchload/internal/adapters/mq/worker"
	"github.com/okian/matchload/internal/adapters/repository"
	"github.com/okian/matchload/internal/domain/analysis"
	"github.com/okian/matchload/pkg/logger"
	"github.com/okian/matchload/pkg/metrics"
)

// Service implements the dashboard operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	datasets repository.Datasets
	jobs     *repository.JobStore
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	memo     *cache.Cache[string]
	cron     *cron.Cron

	// Collaborators
	squad     Squad
	entities  Entities
	injuries  InjurySource
	news      NewsSource
	completer analysis.Completer

	// Configuration
	dataDir         string
	cacheTTL        time.Duration
	cacheMaxEntries int
	refreshSchedule string
	workerCount     int
	queueSize       int
	memoSize        int
	maxCycleLength  int
	recoverySince   time.Time
	defaultPlayer   string
	club            string

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatasets replaces the CSV file store.
func WithDatasets(d repository.Datasets) Option {
	return func(s *Service) { s.datasets = d }
}

// WithDataDir sets the directory holding the CSV exports.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithCache sets the dataset cache expiry and size.
func WithCache(ttl time.Duration, maxEntries int) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.cacheTTL = ttl
		}
		if maxEntries > 0 {
			s.cacheMaxEntries = maxEntries
		}
	}
}

// WithRefreshSchedule sets the cron expression for dataset warm-up. An empty
// schedule disables periodic refresh.
func WithRefreshSchedule(schedule string) Option {
	return func(s *Service) { s.refreshSchedule = schedule }
}

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of waiting analysis jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMemoSize bounds the number of memoized analysis answers.
func WithMemoSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.memoSize = size
		}
	}
}

// WithMaxCycleLength caps the accepted cycle length.
func WithMaxCycleLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCycleLength = n
		}
	}
}

// WithRecoverySince sets the first session date sent for recovery analysis.
func WithRecoverySince(t time.Time) Option {
	return func(s *Service) {
		if !t.IsZero() {
			s.recoverySince = t
		}
	}
}

// WithDefaultPlayer names the squad member used when a request names none.
func WithDefaultPlayer(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultPlayer = name
		}
	}
}

// WithSquad sets the squad directory.
func WithSquad(sq Squad) Option {
	return func(s *Service) { s.squad = sq }
}

// WithEntities sets the entity metadata source.
func WithEntities(e Entities) Option {
	return func(s *Service) { s.entities = e }
}

// WithInjurySource sets the injury history source.
func WithInjurySource(i InjurySource) Option {
	return func(s *Service) { s.injuries = i }
}

// WithNewsSource sets the news search.
func WithNewsSource(n NewsSource) Option {
	return func(s *Service) { s.news = n }
}

// WithCompleter sets the language model used for analysis.
func WithCompleter(c analysis.Completer) Option {
	return func(s *Service) { s.completer = c }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:         "data",
		cacheTTL:        time.Hour,
		cacheMaxEntries: 16,
		workerCount:     runtime.NumCPU(),
		queueSize:       64,
		memoSize:        100,
		maxCycleLength:  14,
		recoverySince:   time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
		defaultPlayer:   "Reece James",
		club:            "Chelsea FC",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components, warms the datasets and starts the analysis
// workers and the refresh schedule.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting matchload service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	if s.datasets == nil {
		s.datasets = repository.NewFileStore(s.dataDir,
			repository.WithTTL(s.cacheTTL),
			repository.WithMaxEntries(s.cacheMaxEntries),
			repository.WithLogger(s.logger.Named("datasets")),
		)
	}
	if err := s.datasets.Warm(ctx); err != nil {
		s.logger.Warn(ctx, "initial dataset load failed", logger.Error(err))
	}

	if s.refreshSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(s.refreshSchedule, func() { s.refresh(runCtx) }); err != nil {
			cancel()
			return fmt.Errorf("refresh schedule %q: %w", s.refreshSchedule, err)
		}
		c.Start()
		s.cron = c
	}

	s.jobs = repository.NewJobStore(runCtx)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	if s.completer != nil {
		s.memo = cache.New[string](cache.WithName("analysis"), cache.WithMaxEntries(s.memoSize))
		analyzer := analysis.New(s.completer, analysis.WithMemo(s.memo), analysis.WithClub(s.club))
		s.pool = worker.NewPool(s.workerCount, s.queue, analyzer, s.jobs)
		s.pool.Start(runCtx)
	}

	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "matchload service started",
		logger.String("dataDir", s.dataDir),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("analysis", s.pool != nil),
		logger.String("refresh", s.refreshSchedule),
	)
	return nil
}

func (s *Service) refresh(ctx context.Context) {
	start := time.Now()
	if err := s.datasets.Warm(ctx); err != nil {
		s.logger.Error(ctx, "dataset refresh failed", logger.Error(err))
		return
	}
	s.logger.Debug(ctx, "datasets refreshed", logger.Duration("took", time.Since(start)))
}

// Refresh reloads every dataset now.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.datasets.Warm(ctx)
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping matchload service...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
		}
	} else {
		_ = s.queue.Close()
	}
	_ = s.jobs.Close()
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "matchload service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":        s.started,
		"dataDir":        s.dataDir,
		"cacheTTL":       s.cacheTTL.String(),
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"maxCycleLength": s.maxCycleLength,
		"analysis":       s.completer != nil,
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["jobs"] = s.jobs.Count()
		if s.memo != nil {
			stats["memoEntries"] = s.memo.Len()
		}
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
