package httpapi

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/healthportal-app/portal-client/internal/app/access"
	"github.com/healthportal-app/portal-client/internal/app/patient"
	"github.com/healthportal-app/portal-client/internal/app/profile"
	"github.com/healthportal-app/portal-client/internal/app/provider"
	"github.com/healthportal-app/portal-client/internal/app/session"
	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/platform/logging"
)

// Server is the portal's HTTP adapter over the session manager and data clients.
type Server struct {
	sessions *session.Manager
	access   *access.Router
	patient  *patient.Service
	provider *provider.Service
	profile  *profile.Service
	metrics  http.Handler
	log      *slog.Logger
}

type Deps struct {
	Sessions *session.Manager
	Access   *access.Router
	Patient  *patient.Service
	Provider *provider.Service
	Profile  *profile.Service
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
	Logger  *slog.Logger
}

func NewServer(d Deps) *Server {
	ar := d.Access
	if ar == nil {
		ar = access.NewRouter()
	}
	return &Server{
		sessions: d.Sessions,
		access:   ar,
		patient:  d.Patient,
		provider: d.Provider,
		profile:  d.Profile,
		metrics:  d.Metrics,
		log:      logging.OrDefault(d.Logger),
	}
}

type sessionView struct {
	State         string     `json:"state"`
	Authenticated bool       `json:"authenticated"`
	Loading       bool       `json:"loading"`
	Subject       string     `json:"subject,omitempty"`
	Role          string     `json:"role,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Landing       string     `json:"landing,omitempty"`
}

func viewOf(s domain.Session) sessionView {
	v := sessionView{
		State:         s.State.String(),
		Authenticated: s.IsAuthenticated(),
		Loading:       s.IsAuthenticating(),
	}
	if s.IsAuthenticated() {
		v.Subject = string(s.Subject)
		v.Role = s.Role.String()
		v.Landing = access.LandingPath(s.Role)
		if !s.Expiry.IsZero() {
			exp := s.Expiry
			v.ExpiresAt = &exp
		}
	}
	return v
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.sessions.Snapshot()))
}

type healthTopic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var healthTopics = []healthTopic{
	{"COVID-19 Updates", "Stay informed about the latest COVID-19 guidelines, vaccination information, and safety protocols."},
	{"Seasonal Flu Prevention", "Learn about flu prevention strategies, vaccination schedules, and when to seek medical attention."},
	{"Mental Health Resources", "Access resources for mental wellness, stress management, and professional support services."},
	{"Nutrition & Wellness", "Discover healthy eating habits, dietary guidelines, and tips for maintaining a balanced lifestyle."},
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"view":    "home",
		"title":   "Your Health, Our Priority",
		"topics":  healthTopics,
		"session": viewOf(s.sessions.Snapshot()),
		"links":   map[string]string{"login": access.PathLogin, "signup": access.PathSignup},
	})
}

func (s *Server) handleLoginView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"view":   "login",
		"fields": []string{"email", "password"},
	})
}

func (s *Server) handleSignupView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"view":   "signup",
		"fields": []string{"email", "password", "full_name", "role", "license_no", "data_usage_consent"},
		"roles":  domain.AllRoles(),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	role, err := s.sessions.Login(r.Context(), f["email"], f["password"])
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	redirect(w, access.LandingPath(role))
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	reg := domain.Registration{
		Email:            f["email"],
		Password:         f["password"],
		FullName:         f["full_name"],
		Role:             domain.Role(f["role"]),
		LicenseNo:        f["license_no"],
		DataUsageConsent: f.bool("data_usage_consent"),
	}
	if reg.Role == "" {
		reg.Role = domain.RolePatient
	}
	role, err := s.sessions.Register(r.Context(), reg)
	if err != nil {
		writeAuthError(w, r, err)
		return
	}
	redirect(w, access.LandingPath(role))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(r.Context())
	redirect(w, access.PathLogin)
}

func (s *Server) handlePatientDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.patient.GetDashboard(r.Context())
	if err != nil {
		writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"view":      "patient-dashboard",
		"dashboard": d,
	})
}

func (s *Server) handleDailyLog(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	steps, err := f.int("steps")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	water, err := f.int("water_intake_ml")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	saved, err := s.patient.SubmitDailyLog(r.Context(), domain.DailyLogEntry{Date: f["date"], Steps: steps, WaterIntakeML: water})
	if err != nil {
		writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Daily log saved successfully!",
		"daily_log": saved,
	})
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	steps, err := f.int("steps")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	sleep, err := f.float("sleep_hours")
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	goals := domain.WellnessGoals{Steps: steps, SleepHours: sleep}
	if err := s.patient.UpdateGoals(r.Context(), goals); err != nil {
		writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Goals updated successfully!",
		"goals":   goals,
	})
}

func (s *Server) handleProviderDashboard(w http.ResponseWriter, r *http.Request) {
	patients, err := s.provider.ListPatients(r.Context())
	if err != nil {
		writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"view":     "provider-dashboard",
		"patients": patients,
	})
}

func (s *Server) handlePatientDetail(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || email == "" {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "Patient not found", nil)
		return
	}
	d, err := s.provider.GetPatientDetail(r.Context(), email)
	if err != nil {
		writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"view":    "patient-detail",
		"patient": d,
	})
}

func (s *Server) handleProfileView(w http.ResponseWriter, r *http.Request) {
	p, err := s.profile.GetProfile(r.Context())
	if err != nil {
		writeDataError(w, r, err)
		return
	}
	role, _ := RoleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"view":    "profile",
		"profile": p,
		"form": map[string]string{
			"allergies":   profile.FormatList(p.Allergies),
			"medications": profile.FormatList(p.Medications),
		},
		"back": access.LandingPath(role),
	})
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	f, err := readForm(w, r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	var u domain.ProfileUpdate
	if f.has("allergies") {
		u.Allergies = profile.ParseList(f["allergies"])
	}
	if f.has("medications") {
		u.Medications = profile.ParseList(f["medications"])
	}
	if u.IsEmpty() {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No changes made"})
		return
	}
	if err := s.profile.UpdateProfile(r.Context(), u); err != nil {
		writeDataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully!",
		"updated": u,
	})
}
