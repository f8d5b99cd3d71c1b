package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/healthportal-app/portal-client/internal/app/access"
	"github.com/healthportal-app/portal-client/internal/app/session"
)

// NewGateMiddleware applies the access policy of the requested view to the
// current session.
//
// Pending hydration answers 503; anonymous or unreadable sessions are sent to
// /login (an unreadable credential also logs the session out); patients asking
// for provider views are sent to their dashboard. Allowed requests carry the
// decoded role in context.
func NewGateMiddleware(sessions *session.Manager, router *access.Router, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := sessions.Snapshot()
			d := router.Check(r.URL.Path, snap)

			switch d.Outcome {
			case access.Allow:
				next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), d.Role)))
			case access.Pending:
				w.Header().Set("Retry-After", "1")
				writeError(w, r, http.StatusServiceUnavailable, "SESSION_LOADING", "The session is still loading.", nil)
			case access.Redirect:
				if d.Invalidate {
					log.WarnContext(r.Context(), "stored credential unreadable at gate; logging out", slog.String("path", r.URL.Path))
					sessions.Revoke(r.Context(), snap.Credential, "undecodable credential")
				}
				redirect(w, d.Location)
			default:
				writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no such view", nil)
			}
		})
	}
}
