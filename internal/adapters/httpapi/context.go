package httpapi

import (
	"context"

	"github.com/healthportal-app/portal-client/internal/domain"
)

type roleKey struct{}

// WithRole stores the role the gate decoded for this request.
func WithRole(ctx context.Context, role domain.Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) (domain.Role, bool) {
	v, ok := ctx.Value(roleKey{}).(domain.Role)
	return v, ok && v != ""
}
