// Package session owns the client's authentication state.
//
// A Manager is the single writer of the credential store. Its state machine is
//
//	Uninitialized -> Hydrating -> Authenticated(role) | Anonymous
//
// and every later login, registration or logout moves between Authenticated
// and Anonymous. Transitions are serialized by one mutex. Logins,
// registrations and logouts bump an epoch counter; a network result that
// comes back after the epoch moved on is discarded, so a logout issued during
// an in-flight login wins. Finishing hydration does not bump the epoch.
//
// Store writes run outside the mutex, in epoch order, so readers never wait
// on credential store I/O.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/platform/auth/credential"
	"github.com/healthportal-app/portal-client/internal/platform/logging"
	"github.com/healthportal-app/portal-client/internal/platform/metrics"
	"github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type Options struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

type Manager struct {
	store credentialstore.Store
	auth  portalapi.Authenticator
	log   *slog.Logger
	rec   metrics.Recorder

	mu      sync.Mutex
	sess    domain.Session
	epoch   uint64
	started bool
	ready   chan struct{}
	readyOK bool

	// storeMu orders writes to the store. Take it before mu, never while holding mu.
	storeMu sync.Mutex
}

func NewManager(store credentialstore.Store, auth portalapi.Authenticator, opts Options) *Manager {
	var rec metrics.Recorder = metrics.Nop{}
	if opts.Metrics != nil {
		rec = opts.Metrics
	}
	return &Manager{
		store: store,
		auth:  auth,
		log:   logging.OrDefault(opts.Logger),
		rec:   rec,
		sess:  domain.Session{State: domain.SessionUninitialized},
		ready: make(chan struct{}),
	}
}

// Start hydrates the session from the credential store. Only the first call
// does anything; later calls return at once and should use WaitReady.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.transitionLocked(domain.Session{State: domain.SessionHydrating})
	epoch := m.epoch
	m.mu.Unlock()

	cred, ok, err := m.store.Load(ctx)
	if err != nil {
		m.log.WarnContext(ctx, "credential store load failed; starting anonymous", slog.Any("err", err))
		ok = false
	}

	next := domain.AnonymousSession()
	var decodeErr error
	if ok {
		claims, err := credential.Decode(cred)
		if err != nil {
			decodeErr = err
		} else {
			next = domain.AuthenticatedSession(cred, claims)
		}
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.rec.RecordStaleResponse("hydrate")
		m.log.DebugContext(ctx, "hydration superseded", slog.String("state", m.sess.State.String()))
		m.mu.Unlock()
		return
	}
	m.transitionLocked(next)
	m.mu.Unlock()

	if decodeErr != nil {
		m.log.WarnContext(ctx, "stored credential unreadable; clearing", slog.Any("err", decodeErr))
		m.persist(ctx, epoch, "clear", m.store.Clear)
	}
}

// WaitReady blocks until hydration has resolved and returns the session at that moment.
func (m *Manager) WaitReady(ctx context.Context) (domain.Session, error) {
	select {
	case <-m.ready:
		return m.Snapshot(), nil
	case <-ctx.Done():
		return domain.Session{}, ctx.Err()
	}
}

// Ready is closed once the session has left Uninitialized/Hydrating.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Login authenticates with email and password and returns the role decoded
// from the issued credential. On failure the stored credential and the current
// session are left untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (domain.Role, error) {
	email = domain.NormalizeEmail(email)
	if err := validateLogin(email, password); err != nil {
		return "", err
	}

	epoch := m.currentEpoch()
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return "", m.loginError(ctx, err)
	}
	return m.adopt(ctx, "login", epoch, token)
}

// Register creates an account and signs it in. license_no is only sent for doctors.
func (m *Manager) Register(ctx context.Context, reg domain.Registration) (domain.Role, error) {
	reg = normalizeRegistration(reg)
	if err := validateRegistration(reg); err != nil {
		return "", err
	}

	epoch := m.currentEpoch()
	token, err := m.auth.Register(ctx, reg)
	if err != nil {
		return "", m.registerError(ctx, err)
	}
	return m.adopt(ctx, "register", epoch, token)
}

// Logout clears the stored credential and moves to Anonymous. It never fails
// and may be called any number of times.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	epoch := m.logoutLocked(ctx, "user")
	m.mu.Unlock()
	m.persist(ctx, epoch, "clear", m.store.Clear)
}

// Revoke logs out only if credentialUsed is still the current credential.
// It reconciles a 401/403 from the server; a rejection of a credential that
// has since been replaced is ignored, and so is a rejection of a request sent
// without one. It reports whether a logout happened.
func (m *Manager) Revoke(ctx context.Context, credentialUsed, reason string) bool {
	if credentialUsed == "" {
		m.log.DebugContext(ctx, "ignoring rejection of an anonymous request", slog.String("reason", reason))
		return false
	}
	m.mu.Lock()
	if m.sess.Credential != credentialUsed {
		m.mu.Unlock()
		m.log.DebugContext(ctx, "ignoring rejection of a replaced credential", slog.String("reason", reason))
		return false
	}
	epoch := m.logoutLocked(ctx, reason)
	m.mu.Unlock()
	m.persist(ctx, epoch, "clear", m.store.Clear)
	return true
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// adopt decodes a freshly issued credential, authenticates and persists it,
// unless a login or logout finished since epoch.
func (m *Manager) adopt(ctx context.Context, op string, epoch uint64, token string) (domain.Role, error) {
	claims, err := credential.Decode(token)
	if err != nil {
		m.log.WarnContext(ctx, "server issued an unreadable credential", slog.String("op", op), slog.Any("err", err))
		return "", &AuthError{Kind: InvalidToken, Message: msgInvalidToken, Err: err}
	}

	m.mu.Lock()
	if m.epoch != epoch {
		state := m.sess.State
		m.mu.Unlock()
		m.rec.RecordStaleResponse(op)
		m.log.InfoContext(ctx, "discarding stale authentication result",
			slog.String("op", op),
			slog.String("state", state.String()),
		)
		return "", &AuthError{Kind: Superseded, Message: msgSuperseded}
	}
	m.epoch++
	epoch = m.epoch
	m.started = true
	m.transitionLocked(domain.AuthenticatedSession(token, claims))
	m.mu.Unlock()

	m.log.InfoContext(ctx, "session authenticated",
		slog.String("op", op),
		slog.String("role", claims.Role.String()),
		slog.String("subject", string(claims.Subject)),
	)
	// A failed save leaves the session working for this process; it just won't survive a restart.
	m.persist(ctx, epoch, op, func(ctx context.Context) error { return m.store.Save(ctx, token) })
	return claims.Role, nil
}

// logoutLocked moves to Anonymous and returns the epoch the store clear belongs to.
func (m *Manager) logoutLocked(ctx context.Context, reason string) uint64 {
	prev := m.sess.State
	m.epoch++
	m.started = true
	m.transitionLocked(domain.AnonymousSession())
	m.log.InfoContext(ctx, "session logged out",
		slog.String("reason", reason),
		slog.String("from", prev.String()),
	)
	return m.epoch
}

// persist runs the store write that belongs to the transition at epoch.
// Writes are serialized by storeMu; one whose epoch is no longer current is
// skipped, since the transition that moved the epoch writes the slot itself.
func (m *Manager) persist(ctx context.Context, epoch uint64, op string, write func(context.Context) error) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()
	if m.currentEpoch() != epoch {
		m.log.DebugContext(ctx, "skipping superseded credential write", slog.String("op", op))
		return
	}
	// Logout must stick even when the caller's context is already done.
	if err := write(context.WithoutCancel(ctx)); err != nil {
		m.log.ErrorContext(ctx, "credential store write failed", slog.String("op", op), slog.Any("err", err))
	}
}

func (m *Manager) transitionLocked(next domain.Session) {
	m.sess = next
	m.rec.RecordSessionTransition(next.State.String())
	if !next.IsAuthenticating() && !m.readyOK {
		m.readyOK = true
		close(m.ready)
	}
}

func (m *Manager) loginError(ctx context.Context, err error) error {
	if apiErr, ok := portalapi.AsError(err); ok && apiErr.Status < http.StatusInternalServerError {
		msg := apiErr.Message
		if msg == "" {
			msg = msgLoginFailed
		}
		m.log.InfoContext(ctx, "login rejected", slog.Int("status", apiErr.Status))
		return &AuthError{Kind: InvalidCredentials, Message: msg, Err: err}
	}
	return m.unavailable(ctx, "login", err)
}

func (m *Manager) registerError(ctx context.Context, err error) error {
	apiErr, ok := portalapi.AsError(err)
	if !ok || apiErr.Status >= http.StatusInternalServerError {
		return m.unavailable(ctx, "register", err)
	}
	m.log.InfoContext(ctx, "registration rejected", slog.Int("status", apiErr.Status))

	if apiErr.Status == http.StatusConflict ||
		(apiErr.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "already registered")) {
		msg := apiErr.Message
		if msg == "" {
			msg = msgEmailRegistered
		}
		return &AuthError{Kind: DuplicateEmail, Message: msg, Err: err}
	}

	msg := apiErr.Message
	if msg == "" {
		msg = msgRegistrationFailed
	}
	return &AuthError{Kind: ValidationFailed, Message: msg, Err: err}
}

func (m *Manager) unavailable(ctx context.Context, op string, err error) error {
	if !errors.Is(err, context.Canceled) {
		m.log.WarnContext(ctx, "authentication request failed", slog.String("op", op), slog.Any("err", err))
	}
	return &AuthError{Kind: Unavailable, Message: msgUnavailable, Err: err}
}
