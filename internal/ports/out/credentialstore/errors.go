package credentialstore

import "errors"

var (
	// ErrEmptyCredential is returned by Save when asked to persist an empty string.
	// Use Clear to log out.
	ErrEmptyCredential = errors.New("empty credential")

	// ErrUnavailable wraps backend failures (I/O, network) so callers can treat them uniformly.
	ErrUnavailable = errors.New("credential store unavailable")
)
