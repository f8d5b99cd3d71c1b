package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want Role
		ok   bool
	}{
		{"patient", RolePatient, true},
		{"doctor", RoleDoctor, true},
		{"Doctor", Role("Doctor"), false},
		{"admin", Role("admin"), false},
		{"", Role(""), false},
	} {
		got, ok := ParseRole(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestSession_LoadingFlag(t *testing.T) {
	t.Parallel()

	assert.True(t, Session{}.IsAuthenticating())
	assert.True(t, Session{State: SessionHydrating}.IsAuthenticating())
	assert.False(t, AnonymousSession().IsAuthenticating())

	s := AuthenticatedSession("a.b.c", Claims{Subject: "alice@example.com", Role: RoleDoctor})
	assert.False(t, s.IsAuthenticating())
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.HasCredential())
	assert.Equal(t, RoleDoctor, s.Role)
	assert.Equal(t, "authenticated", s.State.String())
}

func TestClaims_ExpiredAt(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	assert.False(t, Claims{}.ExpiredAt(now), "no exp never expires client-side")
	assert.False(t, Claims{Expiry: now.Add(time.Second)}.ExpiredAt(now))
	assert.True(t, Claims{Expiry: now}.ExpiredAt(now))
}

func TestUserProfile_LicenseDecoding(t *testing.T) {
	t.Parallel()

	var doc UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"full_name":"Dr Who","role":"doctor","license_no":"MD123"}`), &doc))
	assert.Equal(t, "MD123", doc.License())

	var pat UserProfile
	require.NoError(t, json.Unmarshal([]byte(`{"full_name":"Pat","role":"patient","license_no":null}`), &pat))
	assert.True(t, pat.LicenseNo.IsNull())
	assert.Equal(t, "", pat.License())

	pat.LicenseNo = nullable.NewNullableWithValue("X")
	assert.Equal(t, "X", pat.License())
}

func TestComplianceFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ComplianceGoalMet, ComplianceFor(5000))
	assert.Equal(t, ComplianceMissedCheckup, ComplianceFor(4999))
	assert.Equal(t, ComplianceMissedCheckup, ComplianceFor(0))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Alice Smith", NormalizeHumanName("  Alice   Smith "))
	assert.Equal(t, "Alice@Example.com", NormalizeEmail(" Alice@Example.com\n"))
}

func TestProfileUpdate_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(ProfileUpdate{Allergies: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"allergies":[]}`, string(b))

	b, err = json.Marshal(ProfileUpdate{Medications: []string{"A"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"medications":["A"]}`, string(b))

	assert.True(t, ProfileUpdate{}.IsEmpty())
	assert.False(t, ProfileUpdate{Allergies: []string{}}.IsEmpty())
}
