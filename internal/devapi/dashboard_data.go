package devapi

import (
	"sort"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/models"
	"github.com/mr1hm/surgery-dashboard/internal/risk"
)

// BuildStats summarizes the assessments reported in the window. all is
// every assessment, used for the patient total.
func BuildStats(all, window []models.Assessment, since time.Time) models.DashboardStats {
	total := len(all)
	active, completed, pending := 0, 0, 0
	for _, a := range window {
		if !a.CreatedAt.Before(since) {
			active++
		}
		if a.SurgeryCompleted {
			completed++
		} else {
			pending++
		}
	}

	stats := models.DashboardStats{
		Summary: models.Summary{
			TotalPatients:      &total,
			ActivePatients:     &active,
			SurgeriesCompleted: &completed,
			PendingSurgeries:   &pending,
		},
		RiskSummary:          &models.RiskSummary{},
		ASADistribution:      []models.ASABucket{},
		RecentSurgeries:      []models.WeeklyCount{},
		ComplicationsSummary: &models.ComplicationsSummary{},
		IntubationMetrics:    &models.IntubationMetrics{},
	}

	asa := map[int]int{}
	weeks := map[string]int{}
	for _, a := range window {
		score, _ := risk.Airway(a)
		switch risk.Bucket(score) {
		case models.AlertSeverityCritical:
			stats.RiskSummary.Critical++
		case models.AlertSeverityHigh:
			stats.RiskSummary.High++
		case models.AlertSeverityModerate:
			stats.RiskSummary.Moderate++
		default:
			stats.RiskSummary.Low++
		}

		asa[a.ASA]++
		weeks[weekStart(a.ReportDate).Format("2006-01-02")]++

		if !a.SurgeryCompleted {
			continue
		}
		cs := stats.ComplicationsSummary
		cs.TotalCompleted++
		if a.Complications != "" {
			cs.WithComplications++
		}
		if a.Morbidity {
			cs.MorbidityCases++
		}
		if a.Mortality {
			cs.MortalityCases++
		}

		im := stats.IntubationMetrics
		switch {
		case a.IntubationTries == 1:
			im.FirstAttemptSuccess++
		case a.IntubationTries > 1:
			im.MultipleAttempts++
		}
		if a.IntubationTries >= 3 {
			im.DifficultCases++
		}
	}

	for class, n := range asa {
		stats.ASADistribution = append(stats.ASADistribution, models.ASABucket{Class: class, Count: n})
	}
	sort.Slice(stats.ASADistribution, func(i, j int) bool {
		return stats.ASADistribution[i].Class < stats.ASADistribution[j].Class
	})

	for week, n := range weeks {
		stats.RecentSurgeries = append(stats.RecentSurgeries, models.WeeklyCount{Week: week, Count: n})
	}
	sort.Slice(stats.RecentSurgeries, func(i, j int) bool {
		return stats.RecentSurgeries[i].Week < stats.RecentSurgeries[j].Week
	})

	return stats
}

// BuildAlerts raises an alert for every assessment scoring at least the
// alert threshold, skipping dismissed ones, highest score first.
func BuildAlerts(assessments []models.Assessment, dismissed map[string]bool, now time.Time) models.AlertsPayload {
	payload := models.AlertsPayload{Alerts: []models.Alert{}}

	for _, a := range assessments {
		score, factors := risk.Airway(a)
		sev, ok := risk.AlertSeverity(score)
		if !ok {
			continue
		}
		id := risk.AlertID(a.Folio)
		if dismissed[id] {
			continue
		}

		ts := now
		payload.Alerts = append(payload.Alerts, models.Alert{
			ID:             id,
			Folio:          models.Folio(a.Folio),
			PatientName:    a.PatientName,
			Severity:       sev,
			RiskScore:      float64(score),
			RiskFactors:    factors,
			Timestamp:      &ts,
			HasPostSurgery: a.SurgeryCompleted,
		})
	}

	sort.SliceStable(payload.Alerts, func(i, j int) bool {
		return payload.Alerts[i].RiskScore > payload.Alerts[j].RiskScore
	})

	payload.TotalAlerts = len(payload.Alerts)
	payload.CriticalCount = models.CountSeverity(payload.Alerts, models.AlertSeverityCritical)
	payload.HighCount = models.CountSeverity(payload.Alerts, models.AlertSeverityHigh)
	return payload
}

// weekStart truncates t to the Monday of its week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}
