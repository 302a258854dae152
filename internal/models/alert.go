package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "LOW"
	AlertSeverityModerate AlertSeverity = "MODERATE"
	AlertSeverityHigh     AlertSeverity = "HIGH"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// Rank orders severities LOW < MODERATE < HIGH < CRITICAL. Unknown values rank 0.
func (s AlertSeverity) Rank() int {
	switch s {
	case AlertSeverityLow:
		return 1
	case AlertSeverityModerate:
		return 2
	case AlertSeverityHigh:
		return 3
	case AlertSeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s AlertSeverity) AtLeast(other AlertSeverity) bool {
	return s.Rank() >= other.Rank()
}

func ParseAlertSeverity(s string) (AlertSeverity, error) {
	sev := AlertSeverity(strings.ToUpper(strings.TrimSpace(s)))
	if sev.Rank() == 0 {
		return "", fmt.Errorf("unknown alert severity: %q", s)
	}
	return sev, nil
}

// UnmarshalJSON parses a severity case-insensitively. null leaves s unchanged.
func (s *AlertSeverity) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("error decoding severity: %w", err)
	}
	sev, err := ParseAlertSeverity(raw)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Folio is the hospitalization folio. The API sends it either as a string or a number.
type Folio string

func (f *Folio) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Folio(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("error decoding folio: %w", err)
	}
	*f = Folio(n.String())
	return nil
}

// Alert is a server-flagged high-risk patient record. The client only reads it.
type Alert struct {
	ID             string        `json:"id"`
	Folio          Folio         `json:"folio"`
	PatientName    string        `json:"patient_name"`
	Severity       AlertSeverity `json:"severity"`
	RiskScore      float64       `json:"risk_score"`
	RiskFactors    []string      `json:"risk_factors"`
	Timestamp      *time.Time    `json:"timestamp,omitempty"`
	HasPostSurgery bool          `json:"has_post_surgery,omitempty"`
}

// AlertsPayload is the body of GET /api/dashboard/alerts/.
type AlertsPayload struct {
	Alerts        []Alert `json:"alerts"`
	TotalAlerts   int     `json:"total_alerts"`
	CriticalCount int     `json:"critical_count"`
	HighCount     int     `json:"high_count"`
	Error         string  `json:"error,omitempty"`
}

// UnmarshalJSON decodes the alerts one at a time. An alert that does not
// decode or has no severity is logged and dropped; the rest are kept.
func (p *AlertsPayload) UnmarshalJSON(data []byte) error {
	type plain AlertsPayload
	var raw struct {
		plain
		Alerts []json.RawMessage `json:"alerts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = AlertsPayload(raw.plain)
	if raw.Alerts == nil {
		return nil
	}
	p.Alerts = make([]Alert, 0, len(raw.Alerts))
	for i, msg := range raw.Alerts {
		var a Alert
		if err := json.Unmarshal(msg, &a); err != nil {
			slog.Warn("skipping malformed alert", "index", i, "error", err)
			continue
		}
		if a.Severity == "" {
			slog.Warn("skipping alert without severity", "index", i, "id", a.ID)
			continue
		}
		p.Alerts = append(p.Alerts, a)
	}
	return nil
}

func CountSeverity(alerts []Alert, sev AlertSeverity) int {
	n := 0
	for _, a := range alerts {
		if a.Severity == sev {
			n++
		}
	}
	return n
}
