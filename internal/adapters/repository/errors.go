package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownSource = errors.New("unknown data source")
	ErrJobExists     = errors.New("job already exists")
)
