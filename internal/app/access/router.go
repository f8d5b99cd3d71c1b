// Package access decides which portal views a session may see.
//
// Decisions are navigation only. They rely on the role decoded from an
// unverified credential; the remote API re-authorizes every data request.
package access

import (
	"sort"
	"strings"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/platform/auth/credential"
)

// Portal view paths.
const (
	PathHome              = "/"
	PathLogin             = "/login"
	PathSignup            = "/signup"
	PathPatientDashboard  = "/patient-dashboard"
	PathProviderDashboard = "/provider-dashboard"
	PathProfile           = "/profile"
)

// Policy is the access requirement of a view.
type Policy int

const (
	Public Policy = iota
	AnyAuthenticated
	DoctorOnly
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case AnyAuthenticated:
		return "authenticated"
	case DoctorOnly:
		return "doctor"
	default:
		return "unknown"
	}
}

// Outcome is what the caller should do with a request.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	// Pending means the session is still hydrating; render nothing gated yet.
	Pending
	NotFound
)

// Decision is the result of Check.
type Decision struct {
	Outcome Outcome
	// Location is set for Redirect.
	Location string
	// Invalidate asks the caller to log the session out: the stored credential
	// could not be decoded.
	Invalidate bool
	// Role is the decoded role for an allowed authenticated view.
	Role domain.Role
}

type Router struct {
	policies map[string]Policy
}

// NewRouter returns the portal's policy table.
func NewRouter() *Router {
	return &Router{policies: map[string]Policy{
		PathHome:              Public,
		PathLogin:             Public,
		PathSignup:            Public,
		PathPatientDashboard:  AnyAuthenticated,
		PathProfile:           AnyAuthenticated,
		PathProviderDashboard: DoctorOnly,
	}}
}

// PolicyFor returns the policy of path; sub-paths inherit their view's policy
// (e.g. /provider-dashboard/patients/x is DoctorOnly).
func (r *Router) PolicyFor(path string) (Policy, bool) {
	path = clean(path)
	if p, ok := r.policies[path]; ok {
		return p, true
	}
	for view, p := range r.policies {
		if view != PathHome && strings.HasPrefix(path, view+"/") {
			return p, true
		}
	}
	return Public, false
}

// Paths lists the known views in a stable order.
func (r *Router) Paths() []string {
	out := make([]string, 0, len(r.policies))
	for p := range r.policies {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Check applies the policy of path to session s.
func (r *Router) Check(path string, s domain.Session) Decision {
	policy, ok := r.PolicyFor(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}
	if policy == Public {
		return Decision{Outcome: Allow, Role: s.Role}
	}
	if s.IsAuthenticating() {
		return Decision{Outcome: Pending}
	}
	if !s.IsAuthenticated() {
		return Decision{Outcome: Redirect, Location: PathLogin}
	}

	claims, err := credential.Decode(s.Credential)
	if err != nil {
		return Decision{Outcome: Redirect, Location: PathLogin, Invalidate: true}
	}
	if policy == DoctorOnly && claims.Role != domain.RoleDoctor {
		return Decision{Outcome: Redirect, Location: PathPatientDashboard}
	}
	return Decision{Outcome: Allow, Role: claims.Role}
}

// LandingPath is where a freshly authenticated user goes.
func LandingPath(role domain.Role) string {
	if role == domain.RoleDoctor {
		return PathProviderDashboard
	}
	return PathPatientDashboard
}

func clean(path string) string {
	if path == "" {
		return PathHome
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return PathHome
		}
	}
	return path
}
