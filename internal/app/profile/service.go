// Package profile reads and edits the signed-in user's profile.
package profile

import (
	"context"
	"net/http"
	"strings"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type Service struct {
	api portalapi.SessionCaller
}

func NewService(api portalapi.SessionCaller) *Service {
	return &Service{api: api}
}

func (s *Service) GetProfile(ctx context.Context) (domain.UserProfile, error) {
	var p domain.UserProfile
	if err := s.api.Do(ctx, portalapi.Request{Method: http.MethodGet, Path: portalapi.PathProfile}, &p); err != nil {
		return domain.UserProfile{}, err
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if p.Medications == nil {
		p.Medications = []string{}
	}
	return p, nil
}

// UpdateProfile replaces allergies and/or medications. An empty update sends nothing.
func (s *Service) UpdateProfile(ctx context.Context, u domain.ProfileUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	return s.api.Do(ctx, portalapi.Request{Method: http.MethodPut, Path: portalapi.PathProfile, Body: u}, nil)
}

// ParseList splits a comma-separated form value, trimming items and dropping blanks.
// The result is never nil so that an empty field clears the list.
func ParseList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FormatList is the inverse of ParseList for pre-filling a form.
func FormatList(items []string) string {
	return strings.Join(items, ", ")
}
