package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/matchload/internal/adapters/mq/queue"
	worker "github.com/okian/matchload/internal/adapters/mq/worker"
	"github.com/okian/matchload/internal/adapters/repository"
	"github.com/okian/matchload/internal/domain/analysis"
	logging "github.com/okian/matchload/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockAnalyzer struct {
	mu      sync.Mutex
	answers map[analysis.Mode]string
	errs    map[analysis.Mode]error
	calls   int
	delay   time.Duration
}

func newMockAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{
		answers: make(map[analysis.Mode]string),
		errs:    make(map[analysis.Mode]error),
	}
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req analysis.Request) (string, error) {
	m.mu.Lock()
	m.calls++
	delay := m.delay
	err, failing := m.errs[req.Mode]
	answer := m.answers[req.Mode]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if failing {
		return "", err
	}
	return answer, nil
}

func (m *mockAnalyzer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func waitFinished(store *repository.JobStore, id string) repository.Job {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(context.Background(), id)
		if err == nil && job.State.Finished() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.Get(context.Background(), id)
	return job
}

func submit(ctx context.Context, q *queue.InMemoryQueue, store *repository.JobStore, id string, mode analysis.Mode) bool {
	if _, err := store.Create(ctx, repository.Job{ID: id, Mode: string(mode)}); err != nil {
		return false
	}
	return q.Enqueue(ctx, queue.Task{JobID: id, Request: analysis.Request{Mode: mode, Sample: `[{"x":1}]`}})
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading analysis tasks", t, func() {
		_ = logging.Init()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		store := repository.NewJobStore(ctx)
		defer store.Close()
		analyzer := newMockAnalyzer()
		analyzer.answers[analysis.ModeGPS] = "load is trending up"

		w := worker.NewInMemoryWorker(q, analyzer, store, worker.WithName("test-worker"))
		go w.Run(ctx)

		convey.Convey("When a task succeeds", func() {
			convey.So(submit(ctx, q, store, "job-1", analysis.ModeGPS), convey.ShouldBeTrue)
			job := waitFinished(store, "job-1")

			convey.Convey("Then the job holds the answer", func() {
				convey.So(job.State, convey.ShouldEqual, repository.JobDone)
				convey.So(job.Result, convey.ShouldEqual, "load is trending up")
				convey.So(job.Error, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the analyzer fails", func() {
			analyzer.errs[analysis.ModeRecovery] = errors.New("upstream 503")
			convey.So(submit(ctx, q, store, "job-2", analysis.ModeRecovery), convey.ShouldBeTrue)
			job := waitFinished(store, "job-2")

			convey.Convey("Then the job is failed with the cause", func() {
				convey.So(job.State, convey.ShouldEqual, repository.JobFailed)
				convey.So(job.Error, convey.ShouldContainSubstring, "upstream 503")
			})
		})

		convey.Convey("When the job was deleted before it ran", func() {
			convey.So(q.Enqueue(ctx, queue.Task{JobID: "ghost", Request: analysis.Request{Mode: analysis.ModeGPS}}), convey.ShouldBeTrue)
			convey.So(submit(ctx, q, store, "job-3", analysis.ModeGPS), convey.ShouldBeTrue)
			job := waitFinished(store, "job-3")

			convey.Convey("Then the worker skips it and keeps going", func() {
				convey.So(job.State, convey.ShouldEqual, repository.JobDone)
				convey.So(analyzer.callCount(), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When shut down", func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
			defer stop()

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerTaskTimeout(t *testing.T) {
	convey.Convey("Given a slow analyzer and a short task timeout", t, func() {
		_ = logging.Init()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue()
		store := repository.NewJobStore(ctx)
		defer store.Close()
		analyzer := newMockAnalyzer()
		analyzer.delay = time.Second

		w := worker.NewInMemoryWorker(q, analyzer, store, worker.WithTaskTimeout(20*time.Millisecond))
		go w.Run(ctx)

		convey.So(submit(ctx, q, store, "slow", analysis.ModeCapability), convey.ShouldBeTrue)
		job := waitFinished(store, "slow")

		convey.Convey("Then the job fails with a deadline error", func() {
			convey.So(job.State, convey.ShouldEqual, repository.JobFailed)
			convey.So(job.Error, convey.ShouldContainSubstring, "deadline")
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		_ = logging.Init()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		store := repository.NewJobStore(ctx)
		defer store.Close()
		analyzer := newMockAnalyzer()
		analyzer.answers[analysis.ModeInjury] = "ok"

		pool := worker.NewPool(3, q, analyzer, store)
		convey.So(pool.Size(), convey.ShouldEqual, 3)
		pool.Start(ctx)

		ids := []string{"a", "b", "c", "d", "e", "f"}
		for _, id := range ids {
			convey.So(submit(ctx, q, store, id, analysis.ModeInjury), convey.ShouldBeTrue)
		}

		convey.Convey("Then every job finishes", func() {
			for _, id := range ids {
				convey.So(waitFinished(store, id).State, convey.ShouldEqual, repository.JobDone)
			}
			convey.So(analyzer.callCount(), convey.ShouldEqual, len(ids))
		})

		convey.Convey("Then shutdown closes the queue", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			convey.So(q.IsClosed(), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, queue.Task{JobID: "late"}), convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a non-positive worker count", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), newMockAnalyzer(), nil)

		convey.Convey("Then it sizes the pool from the CPU count", func() {
			convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
