package render

import "github.com/mr1hm/surgery-dashboard/internal/models"

// Widget names a text target on the dashboard.
type Widget string

const (
	WidgetTotalPatients      Widget = "total_patients"
	WidgetActivePatients     Widget = "active_patients"
	WidgetSurgeriesCompleted Widget = "surgeries_completed"
	WidgetPendingSurgeries   Widget = "pending_surgeries"

	WidgetRiskLow      Widget = "risk_low"
	WidgetRiskModerate Widget = "risk_moderate"
	WidgetRiskHigh     Widget = "risk_high"
	WidgetRiskCritical Widget = "risk_critical"

	WidgetAlertsTotal    Widget = "alerts_total"
	WidgetAlertsCritical Widget = "alerts_critical"
	WidgetAlertsHigh     Widget = "alerts_high"

	WidgetLastUpdate Widget = "last_update"
)

// Chart names a dataset target.
type Chart string

const (
	ChartRisk   Chart = "risk"
	ChartASA    Chart = "asa"
	ChartWeekly Chart = "weekly"
)

type Dataset struct {
	Labels []string
	Values []float64
}

// View binds logical widget names to whatever displays them. A view that
// does not bind a widget ignores writes to it.
type View interface {
	SetText(w Widget, text string)
	SetDataset(c Chart, ds Dataset)
	SetAlerts(alerts []models.Alert)
	// SetBanner shows the critical banner with count; 0 removes it.
	SetBanner(count int)
	// Flush redraws after a batch of writes.
	Flush()
}
