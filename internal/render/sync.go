package render

import (
	"fmt"
	"sync"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

// Sync writes poll results into a View. Datasets are overwritten wholesale
// on every apply and results from superseded poll cycles are dropped.
type Sync struct {
	view   View
	format Formatter
	now    func() time.Time

	mu        sync.Mutex
	statsSeq  uint64
	alertsSeq uint64
}

type Option func(*Sync)

// WithClock overrides the clock used for the "last update" widget.
func WithClock(now func() time.Time) Option {
	return func(s *Sync) { s.now = now }
}

func NewSync(view View, format Formatter, opts ...Option) *Sync {
	s := &Sync{
		view:   view,
		format: format,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyStats renders a stats snapshot. It returns false when seq is older
// than the last snapshot applied.
func (s *Sync) ApplyStats(seq uint64, stats *models.DashboardStats) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.statsSeq {
		return false
	}
	s.statsSeq = seq

	s.setCount(WidgetTotalPatients, stats.Summary.TotalPatients)
	s.setCount(WidgetActivePatients, stats.Summary.ActivePatients)
	s.setCount(WidgetSurgeriesCompleted, stats.Summary.SurgeriesCompleted)
	s.setCount(WidgetPendingSurgeries, stats.Summary.PendingSurgeries)

	if r := stats.RiskSummary; r != nil {
		total := r.Total()
		s.view.SetText(WidgetRiskLow, s.format.Share(r.Low, total))
		s.view.SetText(WidgetRiskModerate, s.format.Share(r.Moderate, total))
		s.view.SetText(WidgetRiskHigh, s.format.Share(r.High, total))
		s.view.SetText(WidgetRiskCritical, s.format.Share(r.Critical, total))
		s.view.SetDataset(ChartRisk, Dataset{
			Labels: []string{"Low", "Moderate", "High", "Critical"},
			Values: []float64{float64(r.Low), float64(r.Moderate), float64(r.High), float64(r.Critical)},
		})
	}

	if stats.ASADistribution != nil {
		ds := Dataset{
			Labels: make([]string, 0, len(stats.ASADistribution)),
			Values: make([]float64, 0, len(stats.ASADistribution)),
		}
		for _, b := range stats.ASADistribution {
			ds.Labels = append(ds.Labels, fmt.Sprintf("ASA %d", b.Class))
			ds.Values = append(ds.Values, float64(b.Count))
		}
		s.view.SetDataset(ChartASA, ds)
	}

	if stats.RecentSurgeries != nil {
		ds := Dataset{
			Labels: make([]string, 0, len(stats.RecentSurgeries)),
			Values: make([]float64, 0, len(stats.RecentSurgeries)),
		}
		for _, w := range stats.RecentSurgeries {
			ds.Labels = append(ds.Labels, s.format.WeekLabel(w.Week))
			ds.Values = append(ds.Values, float64(w.Count))
		}
		s.view.SetDataset(ChartWeekly, ds)
	}

	s.view.SetText(WidgetLastUpdate, s.format.UpdatedAt(s.now()))
	s.view.Flush()
	return true
}

// ApplyAlerts renders the server's alert counts and the active alerts. It
// returns false when seq is older than the last alerts cycle applied.
func (s *Sync) ApplyAlerts(seq uint64, payload *models.AlertsPayload, active []models.Alert) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.alertsSeq {
		return false
	}
	s.alertsSeq = seq

	s.view.SetText(WidgetAlertsTotal, s.format.Number(payload.TotalAlerts))
	s.view.SetText(WidgetAlertsCritical, s.format.Number(payload.CriticalCount))
	s.view.SetText(WidgetAlertsHigh, s.format.Number(payload.HighCount))
	s.renderActive(active)
	s.view.Flush()
	return true
}

// RenderActive redraws the alert list and banner after a local change,
// such as a dismissal, without a new poll.
func (s *Sync) RenderActive(active []models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.renderActive(active)
	s.view.Flush()
}

func (s *Sync) renderActive(active []models.Alert) {
	s.view.SetAlerts(active)
	s.view.SetBanner(models.CountSeverity(active, models.AlertSeverityCritical))
}

func (s *Sync) setCount(w Widget, v *int) {
	if v == nil {
		return
	}
	s.view.SetText(w, s.format.Number(*v))
}
