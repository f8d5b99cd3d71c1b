package portalapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Request describes one call to the remote portal API.
type Request struct {
	Method string
	// Path is relative to the API base URL, e.g. "/patient/dashboard".
	Path string
	// Body is JSON-encoded when non-nil.
	Body any
}

// Caller performs a request against the remote API.
//
// credential is attached as "Authorization: Bearer <credential>" when non-empty;
// an empty credential still sends the request (the server is the final authority).
// out, when non-nil, receives the decoded 2xx JSON body.
type Caller interface {
	Call(ctx context.Context, req Request, credential string, out any) error
}

// SessionCaller performs a request with whatever credential the current session holds.
// Data clients depend on it so they never handle credentials themselves.
type SessionCaller interface {
	Do(ctx context.Context, req Request, out any) error
}

// ErrTransport wraps failures that never produced an HTTP response.
var ErrTransport = errors.New("portal api unreachable")

// Error is a non-2xx answer from the remote API.
type Error struct {
	Status int
	// Message is the server-provided detail text, or a generic status text.
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("portal api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("portal api: %d", e.Status)
}

// IsAuthRejection reports whether the server rejected the credential itself.
func (e *Error) IsAuthRejection() bool {
	return e != nil && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
