package domain

// Role is the account role carried in the credential's "role" claim.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// IsValid reports whether r is one of the roles the portal knows how to route.
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole parses s into a Role; ok is false for unknown values.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.IsValid()
}

// AllRoles returns the known roles in a stable order.
func AllRoles() []Role {
	return []Role{RolePatient, RoleDoctor}
}
