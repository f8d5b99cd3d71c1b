package devapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/healthportal-app/portal-client/internal/domain"
)

type registerBody struct {
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	FullName         *string `json:"full_name"`
	Role             string  `json:"role"`
	LicenseNo        *string `json:"license_no"`
	DataUsageConsent bool    `json:"data_usage_consent"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerBody
	if !decodeBody(w, r, &in) {
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = string(domain.RolePatient)
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		writeValidation(w, fieldIssue("role", "Input should be 'patient' or 'doctor'"))
		return
	}
	var issues []validationIssue
	if err := validation.Validate(in.Email, validation.Required, is.Email); err != nil {
		issues = append(issues, fieldIssue("email", "value is not a valid email address"))
	}
	if in.Password == "" {
		issues = append(issues, fieldIssue("password", "Field required"))
	}
	if role == domain.RoleDoctor && (in.LicenseNo == nil || strings.TrimSpace(*in.LicenseNo) == "") {
		issues = append(issues, fieldIssue("license_no", "Value error, License number is required for doctors"))
	}
	if !in.DataUsageConsent {
		issues = append(issues, fieldIssue("data_usage_consent", "Value error, Data usage consent is required"))
	}
	if len(issues) > 0 {
		writeValidation(w, issues...)
		return
	}
	if role == domain.RolePatient {
		in.LicenseNo = nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		s.log.ErrorContext(r.Context(), "hash password failed", slog.Any("err", err))
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	fullName := ""
	if in.FullName != nil {
		fullName = domain.NormalizeHumanName(*in.FullName)
	}

	s.mu.Lock()
	if _, exists := s.users[in.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.users[in.Email] = &user{
		ID:               uuid.New(),
		Email:            in.Email,
		FullName:         fullName,
		Role:             role,
		LicenseNo:        in.LicenseNo,
		Allergies:        []string{},
		Medications:      []string{},
		DataUsageConsent: in.DataUsageConsent,
		PasswordHash:     hash,
	}
	s.mu.Unlock()

	s.log.InfoContext(r.Context(), "account registered", slog.String("role", role.String()))
	s.issueToken(w, r, in.Email, role)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginBody
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.RLock()
	u, ok := s.users[strings.TrimSpace(in.Email)]
	var (
		hash []byte
		role domain.Role
	)
	if ok {
		hash, role = u.PasswordHash, u.Role
	}
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(in.Password)) != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	s.issueToken(w, r, u.Email, role)
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request, email string, role domain.Role) {
	tok, err := s.issuer.Mint(email, role, s.clk.Now())
	if err != nil {
		s.log.ErrorContext(r.Context(), "mint token failed", slog.Any("err", err))
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, tokenBody{AccessToken: tok, TokenType: "bearer"})
}

type profileBody struct {
	FullName         string   `json:"full_name"`
	Email            string   `json:"email"`
	Role             string   `json:"role"`
	Allergies        []string `json:"allergies"`
	Medications      []string `json:"medications"`
	LicenseNo        *string  `json:"license_no"`
	DataUsageConsent bool     `json:"data_usage_consent"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, profileBody{
		FullName:         u.FullName,
		Email:            u.Email,
		Role:             string(u.Role),
		Allergies:        u.Allergies,
		Medications:      u.Medications,
		LicenseNo:        u.LicenseNo,
		DataUsageConsent: u.DataUsageConsent,
	})
}

type profileUpdateBody struct {
	Allergies   *[]string `json:"allergies"`
	Medications *[]string `json:"medications"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in profileUpdateBody
	if !decodeBody(w, r, &in) {
		return
	}
	updated := map[string][]string{}
	if in.Allergies != nil {
		updated["allergies"] = nonNil(*in.Allergies)
	}
	if in.Medications != nil {
		updated["medications"] = nonNil(*in.Medications)
	}
	if len(updated) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No changes made"})
		return
	}

	u, _ := userFromContext(r.Context())
	s.mu.Lock()
	if stored, ok := s.users[u.Email]; ok {
		if v, ok := updated["allergies"]; ok {
			stored.Allergies = v
		}
		if v, ok := updated["medications"]; ok {
			stored.Medications = v
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Profile updated successfully",
		"updated_fields": updated,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())
	today := s.today()

	s.mu.RLock()
	goal, hasGoal := s.goals[u.Email]
	log, hasLog := s.logs[u.Email][today]
	s.mu.RUnlock()

	d := domain.Dashboard{
		User:      u.FullName,
		Reminders: append([]string(nil), Reminders...),
	}
	if hasGoal {
		d.Goals = goal
	}
	if hasLog {
		// The dashboard's step figure reflects today's progress once logged.
		d.Goals.Steps = log.Steps
		d.DailyLog = &domain.DailyLog{Steps: log.Steps, WaterIntakeML: log.WaterIntakeML}
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	var in domain.WellnessGoals
	if !decodeBody(w, r, &in) {
		return
	}
	u, _ := userFromContext(r.Context())
	s.mu.Lock()
	s.goals[u.Email] = in
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Goals updated successfully"})
}

type dailyLogBody struct {
	UserID        string `json:"user_id"`
	Date          string `json:"date"`
	Steps         *int   `json:"steps"`
	WaterIntakeML *int   `json:"water_intake_ml"`
}

func (s *Server) handleDailyLog(w http.ResponseWriter, r *http.Request) {
	var in dailyLogBody
	if !decodeBody(w, r, &in) {
		return
	}
	var issues []validationIssue
	if in.Steps == nil {
		issues = append(issues, fieldIssue("steps", "Field required"))
	}
	if in.WaterIntakeML == nil {
		issues = append(issues, fieldIssue("water_intake_ml", "Field required"))
	}
	if len(issues) > 0 {
		writeValidation(w, issues...)
		return
	}

	u, _ := userFromContext(r.Context())
	// The server keys the log by its own date, whatever the client sent.
	entry := domain.DailyLog{Date: s.today(), Steps: *in.Steps, WaterIntakeML: *in.WaterIntakeML}

	s.mu.Lock()
	if s.logs[u.Email] == nil {
		s.logs[u.Email] = map[string]domain.DailyLog{}
	}
	s.logs[u.Email][entry.Date] = entry
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Daily log saved successfully",
		"data": map[string]any{
			"user_id":         u.Email,
			"date":            entry.Date,
			"steps":           entry.Steps,
			"water_intake_ml": entry.WaterIntakeML,
		},
	})
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	today := s.today()

	s.mu.RLock()
	patients := s.patientsLocked()
	out := make([]domain.PatientSummary, 0, len(patients))
	for _, p := range patients {
		steps := s.logs[p.Email][today].Steps
		out = append(out, domain.PatientSummary{
			Name:                     nameOrUnknown(p.FullName),
			Email:                    p.Email,
			LatestWellnessGoalStatus: fmt.Sprintf("%d steps today", steps),
			ComplianceStatus:         domain.ComplianceFor(steps),
		})
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePatientDetail(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Patient not found")
		return
	}

	s.mu.RLock()
	p, ok := s.users[email]
	if !ok || p.Role != domain.RolePatient {
		s.mu.RUnlock()
		writeDetail(w, http.StatusNotFound, "Patient not found")
		return
	}
	d := domain.PatientDetail{
		Name:        nameOrUnknown(p.FullName),
		Email:       p.Email,
		Allergies:   nonNil(p.Allergies),
		Medications: nonNil(p.Medications),
		RecentLogs:  s.recentLogsLocked(email, recentLogLimit),
	}
	if g, ok := s.goals[email]; ok {
		d.CurrentGoals = &g
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, d)
}

func nameOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
