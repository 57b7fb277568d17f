package api

import (
	"errors"
	"net/http"

	"github.com/okian/matchload/internal/adapters/external"
	"github.com/okian/matchload/internal/adapters/repository"
	service "github.com/okian/matchload/internal/app"
	"github.com/okian/matchload/internal/domain/analysis"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/recovery"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("backpressure")
	ErrUpstream     = errors.New("upstream failure")
	ErrUnavailable  = errors.New("unavailable")
)

// Error is an operation failure of a given kind. Both the kind and the cause
// match errors.Is.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap annotates err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind annotates err with op and kind. A nil err stays nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// statusOf maps an error to the response status and error code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, recovery.ErrUnknownCategory),
		errors.Is(err, analysis.ErrUnknownMode),
		errors.Is(err, analysis.ErrEmptySample):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, external.ErrNotFound),
		errors.Is(err, gps.ErrNoMatches):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, ErrUpstream), errors.Is(err, external.ErrUpstream):
		return http.StatusBadGateway, "upstream"
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, service.ErrUnavailable),
		errors.Is(err, service.ErrNotStarted),
		errors.Is(err, external.ErrNoAPIKey):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
