package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	memstore "github.com/healthportal-app/portal-client/internal/adapters/memory/credentialstore"
	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/platform/auth/devtoken"
	"github.com/healthportal-app/portal-client/internal/platform/logging"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

var testNow = time.Unix(1700000000, 0).UTC()

func mintToken(t *testing.T, sub string, role domain.Role) string {
	t.Helper()
	iss, err := devtoken.NewIssuer([]byte("session-test"), time.Hour)
	require.NoError(t, err)
	tok, err := iss.Mint(sub, role, testNow)
	require.NoError(t, err)
	return tok
}

type fakeAuth struct {
	mu       sync.Mutex
	login    func(ctx context.Context, email, password string) (string, error)
	register func(ctx context.Context, reg domain.Registration) (string, error)
	regs     []domain.Registration
	calls    int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	f.mu.Lock()
	f.calls++
	fn := f.login
	f.mu.Unlock()
	if fn == nil {
		return "", errors.New("unexpected login")
	}
	return fn(ctx, email, password)
}

func (f *fakeAuth) Register(ctx context.Context, reg domain.Registration) (string, error) {
	f.mu.Lock()
	f.calls++
	f.regs = append(f.regs, reg)
	fn := f.register
	f.mu.Unlock()
	if fn == nil {
		return "", errors.New("unexpected register")
	}
	return fn(ctx, reg)
}

func (f *fakeAuth) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func tokenAuth(tok string) *fakeAuth {
	return &fakeAuth{
		login: func(context.Context, string, string) (string, error) { return tok, nil },
		register: func(context.Context, domain.Registration) (string, error) {
			return tok, nil
		},
	}
}

func rejectingAuth(status int, msg string) *fakeAuth {
	err := &portalapi.Error{Status: status, Message: msg}
	return &fakeAuth{
		login:    func(context.Context, string, string) (string, error) { return "", err },
		register: func(context.Context, domain.Registration) (string, error) { return "", err },
	}
}

// gatedStore wraps a memory store and can block Load or writes until
// released, or fail. A blocked write announces itself on writing.
type gatedStore struct {
	*memstore.Store
	loadGate  chan struct{}
	loadErr   error
	clearErr  error
	writeGate chan struct{}
	writing   chan struct{}
}

func (s *gatedStore) Load(ctx context.Context) (string, bool, error) {
	if s.loadGate != nil {
		<-s.loadGate
	}
	if s.loadErr != nil {
		return "", false, s.loadErr
	}
	return s.Store.Load(ctx)
}

func (s *gatedStore) Save(ctx context.Context, cred string) error {
	s.holdWrite()
	return s.Store.Save(ctx, cred)
}

func (s *gatedStore) Clear(ctx context.Context) error {
	s.holdWrite()
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.Store.Clear(ctx)
}

func (s *gatedStore) holdWrite() {
	if s.writeGate == nil {
		return
	}
	s.writing <- struct{}{}
	<-s.writeGate
}

func newMemStore() *memstore.Store { return memstore.NewStore(domain.DefaultStorageKey) }

func newTestManager(store *memstore.Store, auth portalapi.Authenticator) *Manager {
	return NewManager(store, auth, Options{Logger: logging.Discard()})
}

func stored(t *testing.T, s interface {
	Load(context.Context) (string, bool, error)
}) (string, bool) {
	t.Helper()
	cred, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	return cred, ok
}
