package queue

import "errors"

// ErrFull is returned by callers that surface a rejected Enqueue.
var ErrFull = errors.New("analysis queue full")
