// Package devapi is an in-memory stand-in for the remote health portal API.
//
// It speaks the same routes, payloads and error bodies as the production API
// and issues HS256 tokens carrying sub, role and exp. It backs local
// development (cmd/devapi) and the end-to-end tests. Nothing is persisted.
package devapi

import (
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/platform/auth/devtoken"
	"github.com/healthportal-app/portal-client/internal/platform/clock"
	"github.com/healthportal-app/portal-client/internal/platform/logging"
	clockport "github.com/healthportal-app/portal-client/internal/ports/out/clock"
)

// Reminders is the static list every patient dashboard carries.
var Reminders = []string{
	"Drink 8 glasses of water",
	"Take a 10 min walk",
	"Screening due next month",
}

// recentLogLimit bounds the logs returned in a patient detail view.
const recentLogLimit = 7

type Options struct {
	Clock  clockport.Clock
	Logger *slog.Logger
	// BcryptCost defaults to bcrypt.DefaultCost; tests use bcrypt.MinCost.
	BcryptCost int
}

type Server struct {
	issuer *devtoken.Issuer
	clk    clockport.Clock
	log    *slog.Logger
	cost   int

	mu    sync.RWMutex
	users map[string]*user                      // by email
	goals map[string]domain.WellnessGoals       // by email
	logs  map[string]map[string]domain.DailyLog // by email, then date
}

type user struct {
	ID               uuid.UUID
	Email            string
	FullName         string
	Role             domain.Role
	LicenseNo        *string
	Allergies        []string
	Medications      []string
	DataUsageConsent bool
	PasswordHash     []byte
}

func NewServer(issuer *devtoken.Issuer, opts Options) *Server {
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Server{
		issuer: issuer,
		clk:    clk,
		log:    logging.OrDefault(opts.Logger),
		cost:   cost,
		users:  map[string]*user{},
		goals:  map[string]domain.WellnessGoals{},
		logs:   map[string]map[string]domain.DailyLog{},
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Health Portal API"})
	})
	health := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	r.Get("/health", health)
	r.Get("/healthz", health)

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)

		r.Get("/users/profile", s.handleGetProfile)
		r.Put("/users/profile", s.handleUpdateProfile)

		r.Route("/patient", func(r chi.Router) {
			r.Use(requireRole(domain.RolePatient))
			r.Get("/dashboard", s.handleDashboard)
			r.Post("/goals", s.handleGoals)
			r.Post("/daily-log", s.handleDailyLog)
		})
		r.Route("/doctor", func(r chi.Router) {
			r.Use(requireRole(domain.RoleDoctor))
			r.Get("/patients", s.handleListPatients)
			r.Get("/patient/{email}", s.handlePatientDetail)
		})
	})
	return r
}

func (s *Server) today() string {
	return clock.DateOf(s.clk.Now())
}

// patientsLocked returns patient accounts ordered by email. Caller holds s.mu.
func (s *Server) patientsLocked() []*user {
	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		if u.Role == domain.RolePatient {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// recentLogsLocked returns up to limit logs, newest first. Caller holds s.mu.
func (s *Server) recentLogsLocked(email string, limit int) []domain.DailyLog {
	byDate := s.logs[email]
	out := make([]domain.DailyLog, 0, len(byDate))
	for _, l := range byDate {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
