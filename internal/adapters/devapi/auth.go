package devapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/healthportal-app/portal-client/internal/domain"
)

type userKey struct{}

func withUser(ctx context.Context, u user) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func userFromContext(ctx context.Context) (user, bool) {
	u, ok := ctx.Value(userKey{}).(user)
	return u, ok
}

// bearerAuth enforces Authorization: Bearer <token> and loads the account.
// The user is copied into the context so handlers never touch shared state unlocked.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if authz == "" || !strings.HasPrefix(authz, prefix) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))

		sub, _, err := s.issuer.Verify(raw, s.clk.Now())
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.RLock()
		u, ok := s.users[sub]
		var snapshot user
		if ok {
			snapshot = *u
		}
		s.mu.RUnlock()
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), snapshot)))
	})
}

// requireRole answers 403 unless the stored account has role. The role comes
// from the account, not the token, the way the production API checks it.
func requireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := userFromContext(r.Context())
			if !ok || u.Role != role {
				writeDetail(w, http.StatusForbidden, "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
