package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

// AuthorizedCaller attaches the current session credential to every call and
// logs the session out when the server rejects that credential (401/403).
//
// The request is sent even when there is no credential; the server decides.
type AuthorizedCaller struct {
	next portalapi.Caller
	m    *Manager
}

func NewAuthorizedCaller(next portalapi.Caller, m *Manager) *AuthorizedCaller {
	return &AuthorizedCaller{next: next, m: m}
}

// Do performs req with the session credential.
func (c *AuthorizedCaller) Do(ctx context.Context, req portalapi.Request, out any) error {
	cred := c.m.Snapshot().Credential
	err := c.next.Call(ctx, req, cred, out)
	if err == nil {
		return nil
	}
	if apiErr, ok := portalapi.AsError(err); ok && apiErr.IsAuthRejection() {
		if c.m.Revoke(ctx, cred, fmt.Sprintf("api %d on %s", apiErr.Status, portalapi.RouteLabel(req.Path))) {
			c.m.rec.RecordForcedLogout(apiErr.Status)
			c.m.log.InfoContext(ctx, "credential rejected by portal api",
				slog.Int("status", apiErr.Status),
				slog.String("route", portalapi.RouteLabel(req.Path)),
			)
		}
	}
	return err
}

var _ portalapi.SessionCaller = (*AuthorizedCaller)(nil)
