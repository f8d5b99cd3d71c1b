package session

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a login or registration did not authenticate.
type ErrorKind int

const (
	// InvalidCredentials: the server refused the email/password pair.
	InvalidCredentials ErrorKind = iota + 1
	// ValidationFailed: the input was rejected, locally or by the server.
	ValidationFailed
	// DuplicateEmail: registration for an address that already has an account.
	DuplicateEmail
	// Unavailable: transport failure or 5xx; nothing was decided.
	Unavailable
	// InvalidToken: the server answered 2xx with a credential we cannot decode.
	InvalidToken
	// Superseded: the session changed while the request was in flight and the
	// response was discarded.
	Superseded
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid_credentials"
	case ValidationFailed:
		return "validation_failed"
	case DuplicateEmail:
		return "duplicate_email"
	case Unavailable:
		return "unavailable"
	case InvalidToken:
		return "invalid_token"
	case Superseded:
		return "superseded"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

const (
	msgLoginFailed        = "Login failed. Please check your credentials."
	msgRegistrationFailed = "Registration failed. Please try again."
	msgUnavailable        = "The health portal is unreachable. Please try again later."
	msgInvalidToken       = "The server returned an unreadable session. Please try again."
	msgSuperseded         = "The session changed before sign-in completed."
	msgEmailRegistered    = "Email already registered"
)

// AuthError is returned by Login and Register. Message is safe to show the user.
type AuthError struct {
	Kind    ErrorKind
	Message string
	// Fields maps input field names to problems for ValidationFailed.
	Fields map[string]string
	Err    error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsAuthError extracts an *AuthError from err's chain.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries an *AuthError of kind k.
func IsKind(err error, k ErrorKind) bool {
	ae, ok := AsAuthError(err)
	return ok && ae.Kind == k
}
