package credentialstore

import (
	"testing"

	"github.com/healthportal-app/portal-client/internal/adapters/contracttest"
	"github.com/healthportal-app/portal-client/internal/adapters/postgres/testutil"
	"github.com/healthportal-app/portal-client/internal/domain"
	credentialstoreport "github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

func TestContract_PostgresCredentialStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunCredentialStore(t, func(t *testing.T) (contracttest.CredentialStoreOpener, func()) {
		t.Helper()
		return func(key domain.StorageKey) credentialstoreport.Store {
			return NewStore(pool, key)
		}, nil
	})
}
