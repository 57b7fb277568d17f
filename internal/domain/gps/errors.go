package gps

import "errors"

var (
	// ErrNoMatches is returned when a view needs at least one match.
	ErrNoMatches = errors.New("no matches")
	// ErrInvalidDuration is returned for malformed H:MM:SS values.
	ErrInvalidDuration = errors.New("invalid duration")
)
