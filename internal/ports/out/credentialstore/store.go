package credentialstore

import "context"

// Store persists the single bearer credential of this client across restarts.
//
// A Store is a passive persistence surface: it never validates, decodes or
// expires what it holds. The session manager owns the credential and is the
// only writer.
//
// Contract (see contracttest.RunCredentialStore):
// - Save overwrites whatever was stored.
// - Load reports ok=false, err=nil when nothing is stored.
// - Clear is idempotent.
type Store interface {
	Save(ctx context.Context, credential string) error
	Load(ctx context.Context) (credential string, ok bool, err error)
	Clear(ctx context.Context) error
}
