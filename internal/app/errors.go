package service

import "errors"

var (
	// ErrInvalidArgument marks a request parameter the service rejects.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable is returned when a collaborator is not configured.
	ErrUnavailable = errors.New("not configured")
	// ErrQueueFull is returned when the analysis queue rejects a job.
	ErrQueueFull = errors.New("analysis queue full")
	// ErrNotStarted is returned by operations that need Start first.
	ErrNotStarted = errors.New("service not started")
)
