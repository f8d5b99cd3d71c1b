package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type fakeAPI struct {
	paths []string
	resp  string
	err   error
}

func (f *fakeAPI) Do(_ context.Context, req portalapi.Request, out any) error {
	f.paths = append(f.paths, req.Path)
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.resp), out)
}

func TestListPatients(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{resp: `[{"name":"Pat","email":"p@x.io","latest_wellness_goal_status":"6000 steps today","compliance_status":"Goal Met"}]`}
	got, err := NewService(api).ListPatients(context.Background())
	require.NoError(t, err)

	want := []domain.PatientSummary{{
		Name: "Pat", Email: "p@x.io",
		LatestWellnessGoalStatus: "6000 steps today",
		ComplianceStatus:         domain.ComplianceGoalMet,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ListPatients mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"/doctor/patients"}, api.paths)
}

func TestListPatients_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	got, err := NewService(&fakeAPI{resp: `null`}).ListPatients(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetPatientDetail(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{resp: `{"name":"Pat","email":"p@x.io","allergies":null,"medications":["Ibuprofen"],"current_goals":null,"recent_logs":[{"date":"2025-01-01","steps":10,"water_intake_ml":5}]}`}
	d, err := NewService(api).GetPatientDetail(context.Background(), " p@x.io ")
	require.NoError(t, err)

	assert.Equal(t, []string{"/doctor/patient/p@x.io"}, api.paths)
	assert.Equal(t, []string{}, d.Allergies)
	assert.Equal(t, []string{"Ibuprofen"}, d.Medications)
	assert.Nil(t, d.CurrentGoals)
	require.Len(t, d.RecentLogs, 1)
	assert.Equal(t, "2025-01-01", d.RecentLogs[0].Date)
}

func TestGetPatientDetail_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewService(&fakeAPI{}).GetPatientDetail(context.Background(), "  ")
	assert.Error(t, err)

	notFound := &portalapi.Error{Status: http.StatusNotFound, Message: "Patient not found"}
	_, err = NewService(&fakeAPI{err: notFound}).GetPatientDetail(context.Background(), "x@y.z")
	got, ok := portalapi.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Patient not found", got.Message)
}
