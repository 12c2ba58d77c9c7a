package shadow

import (
	"errors"
	"fmt"
)

// Reason classifies an expected shadow operation failure.
type Reason string

const (
	ReasonSourceNotFound Reason = "source_not_found"
	ReasonAlreadyExists  Reason = "already_exists"
	ReasonEncodeFailure  Reason = "encode_failure"
	ReasonSpawnFailure   Reason = "spawn_failure"
	ReasonCancelled      Reason = "cancelled"
	ReasonNotFound       Reason = "not_found"
)

// Sentinels for errors.Is matching against *Error.
var (
	ErrSourceNotFound = errors.New("master not found")
	ErrAlreadyExists  = errors.New("shadow already exists")
	ErrEncodeFailure  = errors.New("encode failed")
	ErrSpawnFailure   = errors.New("encoder could not be started")
	ErrCancelled      = errors.New("cancelled")
	ErrNotFound       = errors.New("not found")
)

var reasonSentinels = map[Reason]error{
	ReasonSourceNotFound: ErrSourceNotFound,
	ReasonAlreadyExists:  ErrAlreadyExists,
	ReasonEncodeFailure:  ErrEncodeFailure,
	ReasonSpawnFailure:   ErrSpawnFailure,
	ReasonCancelled:      ErrCancelled,
	ReasonNotFound:       ErrNotFound,
}

// Error describes a classified failure. ExitCode is set for encode failures
// and is -1 when the encoder ended without a usable exit status.
type Error struct {
	Reason   Reason
	Path     string
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	var msg string
	switch e.Reason {
	case ReasonEncodeFailure:
		if e.ExitCode >= 0 {
			msg = fmt.Sprintf("encode failed with exit code %d", e.ExitCode)
		} else {
			msg = ErrEncodeFailure.Error()
		}
	case ReasonSourceNotFound, ReasonAlreadyExists, ReasonNotFound:
		msg = reasonSentinels[e.Reason].Error()
		if e.Path != "" {
			msg += ": " + e.Path
		}
		return msg
	default:
		if sentinel, ok := reasonSentinels[e.Reason]; ok {
			msg = sentinel.Error()
		} else {
			msg = string(e.Reason)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's reason.
func (e *Error) Is(target error) bool {
	sentinel, ok := reasonSentinels[e.Reason]
	return ok && target == sentinel
}

// ErrorKind exposes the reason for callers that classify errors by string.
func (e *Error) ErrorKind() string {
	return string(e.Reason)
}

// ReasonOf returns the reason carried by err, or "" when err is not a
// classified shadow error.
func ReasonOf(err error) Reason {
	var shadowErr *Error
	if errors.As(err, &shadowErr) {
		return shadowErr.Reason
	}
	return ""
}

func newError(reason Reason, path string, err error) *Error {
	return &Error{Reason: reason, Path: path, ExitCode: -1, Err: err}
}
