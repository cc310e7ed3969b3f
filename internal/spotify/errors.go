package spotify

import (
	"context"
	"errors"
	"net"
)

// Error kinds reported by Client.GetTrackInfo. Match them with errors.Is.
var (
	ErrInvalidID        = errors.New("invalid track ID")
	ErrAuth             = errors.New("authentication failed")
	ErrNotFound         = errors.New("track not found")
	ErrMalformedRequest = errors.New("malformed request")
	ErrRateLimited      = errors.New("rate limited")
	ErrUpstream         = errors.New("upstream request failed")
	ErrTimeout          = errors.New("request timed out")
	ErrConnection       = errors.New("connection failed")
	ErrMissingField     = errors.New("missing field in response")
	ErrUnexpected       = errors.New("unexpected error")
)

// Error is a failed track lookup. Its message is safe to show to end users.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// transportError maps an error from http.Client.Do onto an Error.
func transportError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return newError(ErrTimeout, "Request timed out while fetching track data. Please try again.", err)
	case errors.As(err, &netErr):
		return newError(ErrConnection, "Connection error. Please check your internet connection.", err)
	default:
		return newError(ErrUnexpected, "Unexpected error while fetching track data: "+err.Error(), err)
	}
}
