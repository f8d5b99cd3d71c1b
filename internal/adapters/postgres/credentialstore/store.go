package credentialstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/healthportal-app/portal-client/internal/adapters/postgres"
	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

// Store is a Postgres implementation of credentialstore.Store.
// Each storage key is one row of the credentials table.
type Store struct {
	pool *pgxpool.Pool
	key  domain.StorageKey
}

func NewStore(pool *pgxpool.Pool, key domain.StorageKey) *Store {
	return &Store{pool: pool, key: key}
}

func (s *Store) Save(ctx context.Context, cred string) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if cred == "" {
		return credentialstore.ErrEmptyCredential
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO credentials (storage_key, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (storage_key)
		DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at
	`, string(s.key), cred)
	return postgres.Unavailable("save credential", err)
}

func (s *Store) Load(ctx context.Context) (string, bool, error) {
	if s.pool == nil {
		return "", false, errors.New("nil postgres pool")
	}
	var cred string
	err := s.pool.QueryRow(ctx, `
		SELECT token
		FROM credentials
		WHERE storage_key = $1
	`, string(s.key)).Scan(&cred)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, postgres.Unavailable("load credential", err)
	}
	return cred, true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM credentials WHERE storage_key = $1`, string(s.key))
	return postgres.Unavailable("clear credential", err)
}

var _ credentialstore.Store = (*Store)(nil)
