// Package credentialstore persists the credential in a JSON file on local disk.
//
// The file holds an object of storage key to token, so several portal
// profiles can share one file. Writes go to a temp file that is renamed over
// the original; the file is created with mode 0600.
package credentialstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/credentialstore"
)

// Store is a file-backed implementation of credentialstore.Store.
type Store struct {
	path string
	key  domain.StorageKey
	mu   *sync.Mutex
}

// Handles on the same path serialize through one mutex.
var fileLocks sync.Map // clean path -> *sync.Mutex

func NewStore(path string, key domain.StorageKey) *Store {
	path = filepath.Clean(path)
	mu, _ := fileLocks.LoadOrStore(path, &sync.Mutex{})
	return &Store{path: path, key: key, mu: mu.(*sync.Mutex)}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Save(ctx context.Context, cred string) error {
	if cred == "" {
		return credentialstore.ErrEmptyCredential
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil && !errors.Is(err, errCorrupt) {
		return err
	}
	if m == nil {
		// A corrupt file cannot be merged into; start over.
		m = map[string]string{}
	}
	m[string(s.key)] = cred
	return s.write(m)
}

func (s *Store) Load(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return "", false, err
	}
	cred, ok := m[string(s.key)]
	if !ok || cred == "" {
		return "", false, nil
	}
	return cred, true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if errors.Is(err, errCorrupt) {
		return s.remove()
	}
	if err != nil {
		return err
	}
	if _, ok := m[string(s.key)]; !ok {
		return nil
	}
	delete(m, string(s.key))
	if len(m) == 0 {
		return s.remove()
	}
	return s.write(m)
}

var errCorrupt = errors.New("credential file is not valid JSON")

// read returns an empty map when the file does not exist.
func (s *Store) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", credentialstore.ErrUnavailable, s.path, err)
	}
	if len(b) == 0 {
		return map[string]string{}, nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %w: %s: %v", credentialstore.ErrUnavailable, errCorrupt, s.path, err)
	}
	return m, nil
}

func (s *Store) write(m map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", credentialstore.ErrUnavailable, dir, err)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", credentialstore.ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: chmod temp: %v", credentialstore.ErrUnavailable, err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp: %v", credentialstore.ErrUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync temp: %v", credentialstore.ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", credentialstore.ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: rename: %v", credentialstore.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", credentialstore.ErrUnavailable, s.path, err)
	}
	return nil
}

var _ credentialstore.Store = (*Store)(nil)
