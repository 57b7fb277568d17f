// Package repository gives access to the flat-file datasets and to the
// in-memory analysis job states.
package repository

import (
	"time"

	"github.com/okian/matchload/pkg/logger"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithTTL sets how long a loaded dataset is served before the file is read
// again. 0 keeps it until the file changes.
func WithTTL(ttl time.Duration) Option {
	return func(s *FileStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of cached dataset versions.
func WithMaxEntries(n int) Option {
	return func(s *FileStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}

// JobOption applies a configuration option to the JobStore.
type JobOption func(*JobStore)

// WithRetention sets how long finished jobs are kept.
func WithRetention(d time.Duration) JobOption {
	return func(s *JobStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithPruneInterval sets how often finished jobs are pruned.
func WithPruneInterval(d time.Duration) JobOption {
	return func(s *JobStore) {
		if d > 0 {
			s.pruneInterval = d
		}
	}
}

// WithMaxJobs bounds the number of stored jobs. The oldest finished jobs go
// first; a store full of unfinished jobs rejects new ones.
func WithMaxJobs(n int) JobOption {
	return func(s *JobStore) {
		if n > 0 {
			s.maxJobs = n
		}
	}
}

// WithJobClock replaces time.Now, for tests.
func WithJobClock(now func() time.Time) JobOption {
	return func(s *JobStore) {
		if now != nil {
			s.now = now
		}
	}
}
