package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for full_name normalization before registration.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims surrounding whitespace. Case is preserved: the remote API
// treats the address as the account subject verbatim.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}
