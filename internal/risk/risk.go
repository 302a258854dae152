// Package risk scores pre-surgery assessments for difficult airway risk.
package risk

import (
	"fmt"
	"strconv"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

const (
	MaxScore = 100

	// AlertThreshold is the lowest score reported as a patient alert.
	AlertThreshold    = 70
	CriticalThreshold = 80
	HighThreshold     = 60
	ModerateThreshold = 40
)

// Airway returns the 0-100 airway risk score and the factors behind it, in
// the order they were found.
func Airway(a models.Assessment) (int, []string) {
	score := 0
	factors := []string{}

	if a.Mallampati >= 3 {
		score += 25
		factors = append(factors, fmt.Sprintf("Mallampati class %d", a.Mallampati))
	}
	if a.ASA >= 4 {
		score += 30
		factors = append(factors, fmt.Sprintf("ASA %d", a.ASA))
	}
	if a.BMI >= 35 {
		score += 15
		factors = append(factors, "BMI "+strconv.FormatFloat(a.BMI, 'f', -1, 64)+" (obesity)")
	}
	if a.DifficultAirwayHistory {
		score += 40
		factors = append(factors, "History of difficult airway")
	}
	if a.PatilAldrete >= 3 {
		score += 20
		factors = append(factors, fmt.Sprintf("Patil-Aldrete %d", a.PatilAldrete))
	}
	// zero means the distance was not recorded
	if a.InterIncisorCm > 0 && a.InterIncisorCm < 3 {
		score += 10
		factors = append(factors, "Inter-incisor distance < 3cm")
	}

	return min(score, MaxScore), factors
}

// Bucket places a score in the dashboard's risk summary.
func Bucket(score int) models.AlertSeverity {
	switch {
	case score >= CriticalThreshold:
		return models.AlertSeverityCritical
	case score >= HighThreshold:
		return models.AlertSeverityHigh
	case score >= ModerateThreshold:
		return models.AlertSeverityModerate
	default:
		return models.AlertSeverityLow
	}
}

// AlertSeverity reports the severity of the alert raised for score, and
// false when the score is below the alert threshold.
func AlertSeverity(score int) (models.AlertSeverity, bool) {
	switch {
	case score >= CriticalThreshold:
		return models.AlertSeverityCritical, true
	case score >= AlertThreshold:
		return models.AlertSeverityHigh, true
	default:
		return "", false
	}
}

// AlertID is the stable alert id for a patient folio.
func AlertID(folio string) string {
	return "alert_" + folio
}
