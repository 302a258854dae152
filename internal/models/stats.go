package models

// DashboardStats is the body of GET /api/dashboard/stats/. Every poll replaces
// the previous snapshot wholesale.
type DashboardStats struct {
	Summary              Summary               `json:"summary"`
	RiskSummary          *RiskSummary          `json:"risk_summary,omitempty"`
	ASADistribution      []ASABucket           `json:"asa_distribution,omitempty"`
	RecentSurgeries      []WeeklyCount         `json:"recent_surgeries,omitempty"`
	ComplicationsSummary *ComplicationsSummary `json:"complications_summary,omitempty"`
	IntubationMetrics    *IntubationMetrics    `json:"intubation_metrics,omitempty"`
	Error                string                `json:"error,omitempty"`
}

// Summary counters are pointers so a field the server omitted leaves the
// displayed value alone.
type Summary struct {
	TotalPatients      *int `json:"total_patients,omitempty"`
	ActivePatients     *int `json:"active_patients,omitempty"`
	SurgeriesCompleted *int `json:"surgeries_completed,omitempty"`
	PendingSurgeries   *int `json:"pending_surgeries,omitempty"`
}

type RiskSummary struct {
	Low      int `json:"low"`
	Moderate int `json:"moderate"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

func (r RiskSummary) Total() int {
	return r.Low + r.Moderate + r.High + r.Critical
}

type ASABucket struct {
	Class int `json:"estado_fisico_asa"`
	Count int `json:"count"`
}

type WeeklyCount struct {
	Week  string `json:"week"` // YYYY-MM-DD, start of the week
	Count int    `json:"count"`
}

type ComplicationsSummary struct {
	TotalCompleted    int `json:"total_completed"`
	WithComplications int `json:"with_complications"`
	MorbidityCases    int `json:"morbidity_cases"`
	MortalityCases    int `json:"mortality_cases"`
}

type IntubationMetrics struct {
	FirstAttemptSuccess int `json:"first_attempt_success"`
	MultipleAttempts    int `json:"multiple_attempts"`
	DifficultCases      int `json:"difficult_cases"`
}
