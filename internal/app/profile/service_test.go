package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type fakeAPI struct {
	reqs []portalapi.Request
	resp string
}

func (f *fakeAPI) Do(_ context.Context, req portalapi.Request, out any) error {
	f.reqs = append(f.reqs, req)
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(f.resp), out)
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{resp: `{"full_name":"Dr Who","email":"d@x.io","role":"doctor","license_no":"LIC-1","allergies":null,"medications":[],"data_usage_consent":true}`}
	p, err := NewService(api).GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, p.Role)
	assert.Equal(t, "LIC-1", p.License())
	assert.Equal(t, []string{}, p.Allergies)
	assert.True(t, p.DataUsageConsent)

	api = &fakeAPI{resp: `{"full_name":"Pat","email":"p@x.io","role":"patient","license_no":null,"allergies":["Peanuts"],"medications":[]}`}
	p, err = NewService(api).GetProfile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, p.License())
	assert.Equal(t, []string{"Peanuts"}, p.Allergies)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	s := NewService(api)

	require.NoError(t, s.UpdateProfile(context.Background(), domain.ProfileUpdate{}))
	assert.Empty(t, api.reqs, "empty update must not hit the API")

	u := domain.ProfileUpdate{Allergies: ParseList("Peanuts, , Penicillin "), Medications: ParseList("")}
	require.NoError(t, s.UpdateProfile(context.Background(), u))
	require.Len(t, api.reqs, 1)
	assert.Equal(t, http.MethodPut, api.reqs[0].Method)
	assert.Equal(t, "/users/profile", api.reqs[0].Path)

	body, err := json.Marshal(api.reqs[0].Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"allergies":["Peanuts","Penicillin"],"medications":[]}`, string(body))
}

func TestParseList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{}, ParseList(""))
	assert.Equal(t, []string{}, ParseList(" , ,"))
	assert.Equal(t, []string{"a", "b c"}, ParseList("a,  b c ,"))
	assert.Equal(t, "a, b", FormatList([]string{"a", "b"}))
}
