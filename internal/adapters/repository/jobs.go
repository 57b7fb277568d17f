package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// JobState is the lifecycle state of an analysis job.
type JobState string

// Job states.
const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Finished reports whether the state is terminal.
func (s JobState) Finished() bool {
	return s == JobDone || s == JobFailed
}

// Job is the stored state of an analysis request.
type Job struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Category  string    `json:"category,omitempty"`
	State     JobState  `json:"state"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobStore keeps analysis jobs in memory. Finished jobs are pruned after the
// retention period by a background goroutine started by NewJobStore.
type JobStore struct {
	mu            sync.RWMutex
	jobs          map[string]Job
	retention     time.Duration
	pruneInterval time.Duration
	maxJobs       int
	now           func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewJobStore constructs a job store and starts pruning until ctx is done or
// Close is called.
func NewJobStore(ctx context.Context, opts ...JobOption) *JobStore {
	s := &JobStore{
		jobs:          make(map[string]Job),
		retention:     time.Hour,
		pruneInterval: time.Minute,
		maxJobs:       1000,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startPruner(ctx)
	return s
}

func (s *JobStore) startPruner(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Prune()
			}
		}
	}()
}

// Close stops the pruning goroutine.
func (s *JobStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Create stores a new job in the queued state.
func (s *JobStore) Create(_ context.Context, job Job) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	if len(s.jobs) >= s.maxJobs && !s.evictOldestFinished() {
		return Job{}, fmt.Errorf("job store full: %d unfinished jobs", len(s.jobs))
	}
	now := s.now()
	job.State = JobQueued
	job.CreatedAt, job.UpdatedAt = now, now
	s.jobs[job.ID] = job
	return job, nil
}

// Get returns the job with id or ErrNotFound.
func (s *JobStore) Get(_ context.Context, id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job, nil
}

// Start marks a job running.
func (s *JobStore) Start(ctx context.Context, id string) error {
	return s.update(id, func(j *Job) { j.State = JobRunning })
}

// Complete stores the result of a job.
func (s *JobStore) Complete(ctx context.Context, id, result string) error {
	return s.update(id, func(j *Job) {
		j.State = JobDone
		j.Result = result
		j.Error = ""
	})
}

// Fail stores the failure of a job.
func (s *JobStore) Fail(ctx context.Context, id string, cause error) error {
	return s.update(id, func(j *Job) {
		j.State = JobFailed
		if cause != nil {
			j.Error = cause.Error()
		}
	})
}

// Delete removes a job.
func (s *JobStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

// Count returns the number of stored jobs.
func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Prune drops finished jobs older than the retention period and returns how
// many were removed.
func (s *JobStore) Prune() int {
	cutoff := s.now().Add(-s.retention)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, j := range s.jobs {
		if j.State.Finished() && j.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

func (s *JobStore) update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	fn(&j)
	j.UpdatedAt = s.now()
	s.jobs[id] = j
	return nil
}

// evictOldestFinished must be called with s.mu held.
func (s *JobStore) evictOldestFinished() bool {
	finished := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.State.Finished() {
			finished = append(finished, j)
		}
	}
	if len(finished) == 0 {
		return false
	}
	sort.Slice(finished, func(a, b int) bool { return finished[a].UpdatedAt.Before(finished[b].UpdatedAt) })
	delete(s.jobs, finished[0].ID)
	return true
}
