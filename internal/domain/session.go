package domain

import "time"

// Claims are the attributes decoded from a credential payload.
//
// They are read without signature verification and must only drive navigation.
// The remote API re-authorizes every request on its own.
type Claims struct {
	Subject SubjectID
	Role    Role
	// Expiry is zero when the credential carries no exp claim.
	Expiry time.Time
}

// ExpiredAt reports whether the claims carry an expiry at or before now.
func (c Claims) ExpiredAt(now time.Time) bool {
	return !c.Expiry.IsZero() && !now.Before(c.Expiry)
}

// SessionState is a node of the session lifecycle state machine.
type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionHydrating
	SessionAuthenticated
	SessionAnonymous
)

func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionHydrating:
		return "hydrating"
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Session is a point-in-time snapshot of the client's authentication status.
// It is derived from the stored credential and never persisted itself.
type Session struct {
	State SessionState

	// Credential is the raw bearer token; empty unless State is SessionAuthenticated.
	Credential string

	Subject SubjectID
	Role    Role
	Expiry  time.Time
}

// AnonymousSession is the snapshot of a logged-out client.
func AnonymousSession() Session {
	return Session{State: SessionAnonymous}
}

// AuthenticatedSession builds the snapshot for a decoded credential.
func AuthenticatedSession(credential string, c Claims) Session {
	return Session{
		State:      SessionAuthenticated,
		Credential: credential,
		Subject:    c.Subject,
		Role:       c.Role,
		Expiry:     c.Expiry,
	}
}

// IsAuthenticating is the loading flag: gated content must not render while it is set.
func (s Session) IsAuthenticating() bool {
	return s.State == SessionUninitialized || s.State == SessionHydrating
}

func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated
}

// HasCredential reports whether a bearer token should be attached to outgoing requests.
func (s Session) HasCredential() bool {
	return s.Credential != ""
}
