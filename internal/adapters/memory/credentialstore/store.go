package credentialstore

import (
	"context"
	"sync"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

// Store is an in-memory implementation of credentialstore.Store.
// It is safe for concurrent use. Nothing survives the process.
type Store struct {
	key domain.StorageKey
	b   *backing
}

type backing struct {
	mu sync.RWMutex
	m  map[domain.StorageKey]string
}

func NewStore(key domain.StorageKey) *Store {
	return &Store{
		key: key,
		b:   &backing{m: make(map[domain.StorageKey]string)},
	}
}

// WithKey returns a store for key that shares s's backing map.
func (s *Store) WithKey(key domain.StorageKey) *Store {
	return &Store{key: key, b: s.b}
}

func (s *Store) Save(ctx context.Context, cred string) error {
	_ = ctx
	if cred == "" {
		return credentialstore.ErrEmptyCredential
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.m[s.key] = cred
	return nil
}

func (s *Store) Load(ctx context.Context) (string, bool, error) {
	_ = ctx
	s.b.mu.RLock()
	defer s.b.mu.RUnlock()
	cred, ok := s.b.m[s.key]
	return cred, ok, nil
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.m, s.key)
	return nil
}

var _ credentialstore.Store = (*Store)(nil)
