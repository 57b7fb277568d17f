package repository

import (
	"context"

	"github.com/okian/matchload/internal/domain/capability"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/priority"
	"github.com/okian/matchload/internal/domain/recovery"
)

// Source identifies a dataset.
type Source string

// Datasets.
const (
	SourceGPS        Source = "gps"
	SourceCapability Source = "capability"
	SourceRecovery   Source = "recovery"
	SourcePriority   Source = "priority"
)

// Sources lists every dataset.
var Sources = []Source{SourceGPS, SourceCapability, SourceRecovery, SourcePriority}

// Datasets provides read access to the player's datasets.
type Datasets interface {
	GPS(ctx context.Context) ([]gps.Session, error)
	Capability(ctx context.Context) ([]capability.Test, error)
	Recovery(ctx context.Context) ([]recovery.Entry, error)
	Priorities(ctx context.Context) ([]priority.Goal, error)
	// Warm loads every dataset so later reads hit the cache.
	Warm(ctx context.Context) error
}
