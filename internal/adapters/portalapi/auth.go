package portalapi

import (
	"context"
	"net/http"

	"github.com/oapi-codegen/nullable"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     domain.Role `json:"role"`
	// Omitted entirely for patients; the API rejects a patient with a license.
	LicenseNo        nullable.Nullable[string] `json:"license_no,omitempty"`
	DataUsageConsent bool                      `json:"data_usage_consent"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login implements portalapi.Authenticator.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var tok tokenResponse
	err := c.Call(ctx, portalapi.Request{
		Method: http.MethodPost,
		Path:   portalapi.PathLogin,
		Body:   loginRequest{Email: email, Password: password},
	}, "", &tok)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Register implements portalapi.Authenticator.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (string, error) {
	body := registerRequest{
		Email:            reg.Email,
		Password:         reg.Password,
		FullName:         reg.FullName,
		Role:             reg.Role,
		DataUsageConsent: reg.DataUsageConsent,
	}
	if reg.Role == domain.RoleDoctor {
		body.LicenseNo = nullable.NewNullableWithValue(reg.LicenseNo)
	}

	var tok tokenResponse
	err := c.Call(ctx, portalapi.Request{
		Method: http.MethodPost,
		Path:   portalapi.PathRegister,
		Body:   body,
	}, "", &tok)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

var _ portalapi.Authenticator = (*Client)(nil)
