// Package credentialstore keeps the credential in Redis, for portals that run
// several stateless replicas in front of one user session.
package credentialstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

// DefaultKeyPrefix namespaces credential keys in a shared Redis.
const DefaultKeyPrefix = "portal:credential:"

// Store is a Redis implementation of credentialstore.Store.
// The credential is a plain string value without TTL; the server decides expiry.
type Store struct {
	rdb redis.UniversalClient
	key string
}

func NewStore(rdb redis.UniversalClient, key domain.StorageKey) *Store {
	return NewStoreWithPrefix(rdb, DefaultKeyPrefix, key)
}

func NewStoreWithPrefix(rdb redis.UniversalClient, prefix string, key domain.StorageKey) *Store {
	return &Store{rdb: rdb, key: prefix + string(key)}
}

func (s *Store) Save(ctx context.Context, cred string) error {
	if cred == "" {
		return credentialstore.ErrEmptyCredential
	}
	if err := s.rdb.Set(ctx, s.key, cred, 0).Err(); err != nil {
		return unavailable("save credential", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (string, bool, error) {
	cred, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable("load credential", err)
	}
	if cred == "" {
		return "", false, nil
	}
	return cred, true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return unavailable("clear credential", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: redis %s: %v", credentialstore.ErrUnavailable, op, err)
}

var _ credentialstore.Store = (*Store)(nil)
