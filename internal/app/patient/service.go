// Package patient is the patient-side data client: dashboard, daily log and goals.
package patient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/healthportal-app/portal-client/internal/domain"
	"github.com/healthportal-app/portal-client/internal/platform/clock"
	clockport "github.com/healthportal-app/portal-client/internal/ports/out/clock"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type Service struct {
	api portalapi.SessionCaller
	clk clockport.Clock
}

func NewService(api portalapi.SessionCaller, clk clockport.Clock) *Service {
	return &Service{api: api, clk: clk}
}

func (s *Service) GetDashboard(ctx context.Context) (domain.Dashboard, error) {
	var d domain.Dashboard
	if err := s.api.Do(ctx, portalapi.Request{Method: http.MethodGet, Path: portalapi.PathPatientDashboard}, &d); err != nil {
		return domain.Dashboard{}, err
	}
	if d.Reminders == nil {
		d.Reminders = []string{}
	}
	return d, nil
}

type dailyLogRequest struct {
	// The API derives the user from the credential but still expects the field.
	UserID        string `json:"user_id"`
	Date          string `json:"date"`
	Steps         int    `json:"steps"`
	WaterIntakeML int    `json:"water_intake_ml"`
}

// SubmitDailyLog records today's progress; an empty entry date means today (UTC).
func (s *Service) SubmitDailyLog(ctx context.Context, e domain.DailyLogEntry) (domain.DailyLog, error) {
	if e.Steps < 0 || e.WaterIntakeML < 0 {
		return domain.DailyLog{}, fmt.Errorf("%w: steps and water intake must not be negative", ErrInvalidInput)
	}
	date := e.Date
	if date == "" {
		date = clock.DateOf(s.clk.Now())
	}
	req := dailyLogRequest{Date: date, Steps: e.Steps, WaterIntakeML: e.WaterIntakeML}
	if err := s.api.Do(ctx, portalapi.Request{Method: http.MethodPost, Path: portalapi.PathPatientDailyLog, Body: req}, nil); err != nil {
		return domain.DailyLog{}, err
	}
	return domain.DailyLog{Date: date, Steps: e.Steps, WaterIntakeML: e.WaterIntakeML}, nil
}

func (s *Service) UpdateGoals(ctx context.Context, g domain.WellnessGoals) error {
	if g.Steps < 0 || g.SleepHours < 0 || g.SleepHours > 24 {
		return fmt.Errorf("%w: steps must not be negative and sleep hours must be within 0-24", ErrInvalidInput)
	}
	return s.api.Do(ctx, portalapi.Request{Method: http.MethodPost, Path: portalapi.PathPatientGoals, Body: g}, nil)
}
