package auth

import (
	"context"
	"errors"
	"net"
)

// Error kinds reported by TokenProvider. Match them with errors.Is.
var (
	// ErrTimeout is returned when the token endpoint does not answer in time.
	ErrTimeout = errors.New("token request timed out")

	// ErrConnection is returned when the token endpoint cannot be reached.
	ErrConnection = errors.New("token endpoint unreachable")

	// ErrInvalidCredentials is returned when Spotify rejects the client ID or secret.
	ErrInvalidCredentials = errors.New("invalid client credentials")

	// ErrAuthFailed is returned for any other non-2xx token response.
	ErrAuthFailed = errors.New("token request failed")

	// ErrUnexpected covers malformed token responses and any other failure.
	ErrUnexpected = errors.New("unexpected token error")
)

// Error is a failed client-credentials exchange. Its message is safe to show
// to end users.
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

// isTimeout reports whether err came from a deadline or client timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isConnection reports whether err is a transport-level failure that never
// produced an HTTP response.
func isConnection(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
