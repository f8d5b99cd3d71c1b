package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/healthportal-app/portal-client/internal/app/access"
)

const loginPath = access.PathLogin

// NewRouter constructs the portal HTTP router.
//
// Views are JSON view models. Every view route passes the access gate; the
// health, metrics and session endpoints do not.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/session", s.handleSession)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(NewGateMiddleware(s.sessions, s.access, s.log))

		r.Get(access.PathHome, s.handleHome)
		r.Get(access.PathLogin, s.handleLoginView)
		r.Post(access.PathLogin, s.handleLogin)
		r.Get(access.PathSignup, s.handleSignupView)
		r.Post(access.PathSignup, s.handleSignup)

		r.Get(access.PathPatientDashboard, s.handlePatientDashboard)
		r.Post(access.PathPatientDashboard+"/daily-log", s.handleDailyLog)
		r.Post(access.PathPatientDashboard+"/goals", s.handleGoals)

		r.Get(access.PathProviderDashboard, s.handleProviderDashboard)
		r.Get(access.PathProviderDashboard+"/patients/{email}", s.handlePatientDetail)

		r.Get(access.PathProfile, s.handleProfileView)
		r.Post(access.PathProfile, s.handleProfileUpdate)
	})
	return r
}
