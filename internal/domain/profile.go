package domain

import (
	"encoding/json"

	"github.com/oapi-codegen/nullable"
)

// Registration is the sign-up payload.
// LicenseNo is required iff Role is RoleDoctor; DataUsageConsent must be true.
type Registration struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
	Role             Role   `json:"role"`
	LicenseNo        string `json:"license_no"`
	DataUsageConsent bool   `json:"data_usage_consent"`
}

// UserProfile is the account profile shared by patients and providers.
type UserProfile struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	// LicenseNo is null for patients.
	LicenseNo        nullable.Nullable[string] `json:"license_no,omitempty"`
	Allergies        []string                  `json:"allergies"`
	Medications      []string                  `json:"medications"`
	DataUsageConsent bool                      `json:"data_usage_consent"`
}

// License returns the license number, or "" when unset or null.
func (p UserProfile) License() string {
	if !p.LicenseNo.IsSpecified() || p.LicenseNo.IsNull() {
		return ""
	}
	v, err := p.LicenseNo.Get()
	if err != nil {
		return ""
	}
	return v
}

// ProfileUpdate replaces the editable medical lists. A nil slice leaves the
// field unchanged; an empty one clears it.
type ProfileUpdate struct {
	Allergies   []string
	Medications []string
}

// MarshalJSON emits only the non-nil lists, keeping empty ones as [].
func (u ProfileUpdate) MarshalJSON() ([]byte, error) {
	m := make(map[string][]string, 2)
	if u.Allergies != nil {
		m["allergies"] = u.Allergies
	}
	if u.Medications != nil {
		m["medications"] = u.Medications
	}
	return json.Marshal(m)
}

// IsEmpty reports whether the update carries no changes.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Allergies == nil && u.Medications == nil
}
