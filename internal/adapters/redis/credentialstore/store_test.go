package credentialstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthportal-app/portal-client/internal/adapters/contracttest"
	"github.com/healthportal-app/portal-client/internal/domain"
	credentialstoreport "github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestContract_RedisCredentialStore(t *testing.T) {
	contracttest.RunCredentialStore(t, func(t *testing.T) (contracttest.CredentialStoreOpener, func()) {
		t.Helper()
		_, client := newTestRedis(t)
		return func(key domain.StorageKey) credentialstoreport.Store {
			return NewStore(client, key)
		}, nil
	})
}

func TestStore_KeyLayoutAndNoTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	s := NewStore(client, domain.DefaultStorageKey)
	require.NoError(t, s.Save(ctx, "abc"))

	got, err := mr.Get("portal:credential:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Zero(t, mr.TTL("portal:credential:token"))

	custom := NewStoreWithPrefix(client, "tenant-a:", domain.DefaultStorageKey)
	require.NoError(t, custom.Save(ctx, "def"))
	assert.True(t, mr.Exists("tenant-a:token"))
}

func TestStore_BackendDown(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	s := NewStore(client, domain.DefaultStorageKey)

	mr.Close()

	_, ok, err := s.Load(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, credentialstoreport.ErrUnavailable)
	assert.ErrorIs(t, s.Save(ctx, "x"), credentialstoreport.ErrUnavailable)
	assert.ErrorIs(t, s.Clear(ctx), credentialstoreport.ErrUnavailable)
}
