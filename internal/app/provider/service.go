// Package provider is the doctor-side data client.
package provider

import (
	"context"
	"net/http"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type Service struct {
	api portalapi.SessionCaller
}

func NewService(api portalapi.SessionCaller) *Service {
	return &Service{api: api}
}

func (s *Service) ListPatients(ctx context.Context) ([]domain.PatientSummary, error) {
	var out []domain.PatientSummary
	if err := s.api.Do(ctx, portalapi.Request{Method: http.MethodGet, Path: portalapi.PathDoctorPatients}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.PatientSummary{}
	}
	return out, nil
}

func (s *Service) GetPatientDetail(ctx context.Context, email string) (domain.PatientDetail, error) {
	path, err := portalapi.DoctorPatientPath(domain.NormalizeEmail(email))
	if err != nil {
		return domain.PatientDetail{}, err
	}
	var d domain.PatientDetail
	if err := s.api.Do(ctx, portalapi.Request{Method: http.MethodGet, Path: path}, &d); err != nil {
		return domain.PatientDetail{}, err
	}
	if d.Allergies == nil {
		d.Allergies = []string{}
	}
	if d.Medications == nil {
		d.Medications = []string{}
	}
	if d.RecentLogs == nil {
		d.RecentLogs = []domain.DailyLog{}
	}
	return d, nil
}
