// Package worker runs queued analysis tasks and records their outcome.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/matchload/internal/adapters/mq/queue"
	"github.com/okian/matchload/internal/domain/analysis"
	"github.com/okian/matchload/pkg/logger"
	"github.com/okian/matchload/pkg/metrics"
)

const (
	defaultTaskTimeout  = 2 * time.Minute
	poolShutdownTimeout = 30 * time.Second
)

// Analyzer answers an analysis request.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (string, error)
}

// Recorder stores job state transitions.
type Recorder interface {
	Start(ctx context.Context, id string) error
	Complete(ctx context.Context, id, result string) error
	Fail(ctx context.Context, id string, cause error) error
}

// Queue defines how workers receive tasks.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Task
}

// Worker processes tasks until its context ends or it is shut down.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker on a Queue.
type InMemoryWorker struct {
	queue    Queue
	analyzer Analyzer
	recorder Recorder
	name     string
	timeout  time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, a Analyzer, r Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		analyzer: a,
		recorder: r,
		name:     "worker",
		timeout:  defaultTaskTimeout,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	tasks := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-tasks:
			if !ok {
				return
			}
			if err := w.process(ctx, t); err != nil {
				w.logger.Error(ctx, "analysis task failed",
					logger.String("job_id", t.JobID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker after the task in flight.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, t queue.Task) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	mode := string(t.Request.Mode)
	if err := w.recorder.Start(ctx, t.JobID); err != nil {
		// The job was pruned or deleted while waiting.
		metrics.RecordWorkerError()
		return fmt.Errorf("start job %s: %w", t.JobID, err)
	}
	metrics.RecordAnalysisJob(mode, "running")

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	answer, err := w.analyzer.Analyze(runCtx, t.Request)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", errorType(err))
		metrics.RecordAnalysisJob(mode, "failed")
		if ferr := w.recorder.Fail(ctx, t.JobID, err); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	}

	metrics.RecordAnalysisJob(mode, "done")
	if err := w.recorder.Complete(ctx, t.JobID, answer); err != nil {
		return fmt.Errorf("complete job %s: %w", t.JobID, err)
	}
	w.logger.Debug(ctx, "analysis task done",
		logger.String("job_id", t.JobID),
		logger.String("mode", mode),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, analysis.ErrEmptyAnswer):
		return "empty_answer"
	case errors.Is(err, analysis.ErrEmptySample), errors.Is(err, analysis.ErrUnknownMode):
		return "bad_request"
	default:
		return "analysis_error"
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers. A count below one uses the CPU count.
func NewPool(workerCount int, q Queue, a Analyzer, r Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, a, r, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	metrics.UpdateWorkerCount(0)
	return errors.Join(errs...)
}
