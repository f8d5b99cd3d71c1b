package portalapi

import (
	"context"

	"github.com/healthportal-app/portal-client/internal/domain"
)

// Authenticator exchanges account credentials for a bearer token.
// Failures are *Error (server answered) or wrap ErrTransport.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, err error)
	Register(ctx context.Context, reg domain.Registration) (token string, err error)
}
