package domain

// WellnessGoals are a patient's daily targets.
type WellnessGoals struct {
	Steps      int     `json:"steps"`
	SleepHours float64 `json:"sleep_hours"`
}

// DailyLog is one day of recorded progress.
type DailyLog struct {
	Date          string `json:"date,omitempty"`
	Steps         int    `json:"steps"`
	WaterIntakeML int    `json:"water_intake_ml"`
}

// DailyLogEntry is what a patient submits; an empty Date means today.
type DailyLogEntry struct {
	Date          string
	Steps         int
	WaterIntakeML int
}

// Dashboard is the patient landing view.
type Dashboard struct {
	User      string        `json:"user"`
	Goals     WellnessGoals `json:"goals"`
	DailyLog  *DailyLog     `json:"daily_log"`
	Reminders []string      `json:"reminders"`
}

// PatientSummary is one row of a provider's patient list.
type PatientSummary struct {
	Name                     string `json:"name"`
	Email                    string `json:"email"`
	LatestWellnessGoalStatus string `json:"latest_wellness_goal_status"`
	ComplianceStatus         string `json:"compliance_status"`
}

// PatientDetail is the provider's drill-down into one patient.
type PatientDetail struct {
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Allergies    []string       `json:"allergies"`
	Medications  []string       `json:"medications"`
	CurrentGoals *WellnessGoals `json:"current_goals"`
	RecentLogs   []DailyLog     `json:"recent_logs"`
}

const (
	ComplianceGoalMet       = "Goal Met"
	ComplianceMissedCheckup = "Missed Preventive Checkup"

	// ComplianceStepThreshold is the daily step count that counts as compliant.
	ComplianceStepThreshold = 5000
)

// ComplianceFor derives the compliance label from today's step count.
func ComplianceFor(stepsToday int) string {
	if stepsToday >= ComplianceStepThreshold {
		return ComplianceGoalMet
	}
	return ComplianceMissedCheckup
}
