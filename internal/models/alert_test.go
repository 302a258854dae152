package models

import (
	"encoding/json"
	"testing"
)

func TestParseAlertSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    AlertSeverity
		wantErr bool
	}{
		{"CRITICAL", AlertSeverityCritical, false},
		{"critical", AlertSeverityCritical, false},
		{" High ", AlertSeverityHigh, false},
		{"moderate", AlertSeverityModerate, false},
		{"Low", AlertSeverityLow, false},
		{"SEVERE", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlertSeverity(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %s", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAlertSeverity_Rank(t *testing.T) {
	if !AlertSeverityCritical.AtLeast(AlertSeverityHigh) || AlertSeverityLow.AtLeast(AlertSeverityModerate) {
		t.Error("unexpected severity ordering")
	}
	if AlertSeverity("bogus").Rank() != 0 {
		t.Error("expected unknown severity to rank 0")
	}
}

func TestAlertSeverity_UnmarshalNull(t *testing.T) {
	sev := AlertSeverityHigh
	if err := json.Unmarshal([]byte(`null`), &sev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sev != AlertSeverityHigh {
		t.Errorf("expected null to leave severity unchanged, got %s", sev)
	}
}

func TestAlertsPayload_SkipsBadAlerts(t *testing.T) {
	body := `{
		"alerts": [
			{"id": "1", "folio": 1001, "severity": "critical", "risk_score": 90},
			{"id": "2", "folio": 1002, "severity": null},
			{"id": "3", "folio": 1003, "severity": "SEVERE"},
			{"id": "4", "folio": "1004", "severity": "HIGH", "risk_score": 72}
		],
		"total_alerts": 4,
		"critical_count": 1,
		"high_count": 1
	}`

	var p AlertsPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(p.Alerts) != 2 {
		t.Fatalf("expected 2 valid alerts, got %d: %+v", len(p.Alerts), p.Alerts)
	}
	if p.Alerts[0].ID != "1" || p.Alerts[0].Severity != AlertSeverityCritical || p.Alerts[0].Folio != "1001" {
		t.Errorf("unexpected first alert: %+v", p.Alerts[0])
	}
	if p.Alerts[1].ID != "4" || p.Alerts[1].Folio != "1004" {
		t.Errorf("unexpected second alert: %+v", p.Alerts[1])
	}
	if p.TotalAlerts != 4 || p.CriticalCount != 1 || p.HighCount != 1 {
		t.Errorf("expected server counts kept, got %+v", p)
	}
}

func TestAlertsPayload_ErrorBody(t *testing.T) {
	var p AlertsPayload
	if err := json.Unmarshal([]byte(`{"error": "database unavailable"}`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.Error != "database unavailable" || p.Alerts != nil {
		t.Errorf("unexpected payload: %+v", p)
	}
}
