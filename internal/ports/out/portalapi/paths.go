package portalapi

import (
	"fmt"

	"github.com/oapi-codegen/runtime"
)

// Remote API routes.
const (
	PathLogin            = "/login"
	PathRegister         = "/register"
	PathProfile          = "/users/profile"
	PathPatientDashboard = "/patient/dashboard"
	PathPatientDailyLog  = "/patient/daily-log"
	PathPatientGoals     = "/patient/goals"
	PathDoctorPatients   = "/doctor/patients"

	// PathDoctorPatientTemplate is the metrics label for per-patient lookups.
	PathDoctorPatientTemplate = "/doctor/patient/{email}"
	pathDoctorPatientPrefix   = "/doctor/patient/"
)

// DoctorPatientPath renders /doctor/patient/{email} with the email escaped as a
// simple-style path parameter.
func DoctorPatientPath(email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("patient email is required")
	}
	p, err := runtime.StyleParamWithLocation("simple", false, "email", runtime.ParamLocationPath, email)
	if err != nil {
		return "", fmt.Errorf("encode patient email: %w", err)
	}
	return pathDoctorPatientPrefix + p, nil
}

// RouteLabel collapses per-patient paths into their template so metrics stay low-cardinality.
func RouteLabel(path string) string {
	if len(path) > len(pathDoctorPatientPrefix) && path[:len(pathDoctorPatientPrefix)] == pathDoctorPatientPrefix {
		return PathDoctorPatientTemplate
	}
	return path
}
