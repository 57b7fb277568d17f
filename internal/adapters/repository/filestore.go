package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/matchload/internal/adapters/cache"
	"github.com/okian/matchload/internal/adapters/csvsource"
	"github.com/okian/matchload/internal/domain/capability"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/priority"
	"github.com/okian/matchload/internal/domain/recovery"
	"github.com/okian/matchload/pkg/logger"
	"github.com/okian/matchload/pkg/metrics"
)

// FileStore reads datasets from CSV files in a directory.
//
// Parsed datasets are cached under (source, file modification time), so an
// edited file is picked up on the next read even before the TTL runs out.
type FileStore struct {
	dir        string
	ttl        time.Duration
	maxEntries int
	log        logger.Logger
	cache      *cache.Cache[any]
}

var _ Datasets = (*FileStore)(nil)

// NewFileStore returns a store reading from dir.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:        dir,
		ttl:        time.Hour,
		maxEntries: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("datasets")
	}
	s.cache = cache.New[any](
		cache.WithName("datasets"),
		cache.WithTTL(s.ttl),
		cache.WithMaxEntries(s.maxEntries),
	)
	return s
}

// Path returns the file backing source.
func (s *FileStore) Path(src Source) (string, error) {
	var name string
	switch src {
	case SourceGPS:
		name = csvsource.GPSFile
	case SourceCapability:
		name = csvsource.CapabilityFile
	case SourceRecovery:
		name = csvsource.RecoveryFile
	case SourcePriority:
		name = csvsource.PriorityFile
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, src)
	}
	return filepath.Join(s.dir, name), nil
}

// GPS returns the GPS sessions sorted by date. Returned slices are shared
// between callers and must not be modified.
func (s *FileStore) GPS(ctx context.Context) ([]gps.Session, error) {
	return load(ctx, s, SourceGPS, csvsource.ReadGPS)
}

// Capability returns the capability tests sorted by date.
func (s *FileStore) Capability(ctx context.Context) ([]capability.Test, error) {
	return load(ctx, s, SourceCapability, csvsource.ReadCapability)
}

// Recovery returns the recovery entries sorted by date.
func (s *FileStore) Recovery(ctx context.Context) ([]recovery.Entry, error) {
	return load(ctx, s, SourceRecovery, csvsource.ReadRecovery)
}

// Priorities returns the priority goals in file order.
func (s *FileStore) Priorities(ctx context.Context) ([]priority.Goal, error) {
	return load(ctx, s, SourcePriority, csvsource.ReadPriorities)
}

// Warm loads all datasets concurrently. Every source is attempted; the first
// error is returned.
func (s *FileStore) Warm(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { _, err := s.GPS(ctx); return err })
	g.Go(func() error { _, err := s.Capability(ctx); return err })
	g.Go(func() error { _, err := s.Recovery(ctx); return err })
	g.Go(func() error { _, err := s.Priorities(ctx); return err })
	err := g.Wait()
	metrics.RecordRefreshRun(err)
	return err
}

// Invalidate drops every cached dataset.
func (s *FileStore) Invalidate() {
	s.cache.Purge()
}

func load[T any](ctx context.Context, s *FileStore, src Source, parse func(io.Reader) ([]T, error)) ([]T, error) {
	path, err := s.Path(src)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w: %s", src, ErrNotFound, path)
		}
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	key := fmt.Sprintf("%s@%d", src, info.ModTime().UnixNano())

	v, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		start := time.Now()
		rows, err := readFile(path, parse)
		metrics.RecordDatasetLoad(string(src), len(rows), float64(time.Since(start).Milliseconds()), err)
		if err != nil {
			s.log.Error(ctx, "dataset load failed", logger.String("source", string(src)), logger.Error(err))
			return nil, err
		}
		s.log.Info(ctx, "dataset loaded",
			logger.String("source", string(src)),
			logger.Int("rows", len(rows)),
			logger.Duration("took", time.Since(start)),
		)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]T), nil
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}
