package risk

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

func TestAirway(t *testing.T) {
	tests := []struct {
		name    string
		a       models.Assessment
		score   int
		factors []string
	}{
		{
			name:    "low risk",
			a:       models.Assessment{ASA: 1, Mallampati: 1, PatilAldrete: 1, InterIncisorCm: 4.5, BMI: 23},
			score:   0,
			factors: []string{},
		},
		{
			name:    "mallampati and asa",
			a:       models.Assessment{ASA: 4, Mallampati: 3, InterIncisorCm: 4},
			score:   55,
			factors: []string{"Mallampati class 3", "ASA 4"},
		},
		{
			name:    "high",
			a:       models.Assessment{ASA: 4, Mallampati: 4, BMI: 36.5, InterIncisorCm: 4},
			score:   70,
			factors: []string{"Mallampati class 4", "ASA 4", "BMI 36.5 (obesity)"},
		},
		{
			name:  "capped",
			a:     models.Assessment{ASA: 5, Mallampati: 4, BMI: 40, DifficultAirwayHistory: true, PatilAldrete: 3, InterIncisorCm: 2.5},
			score: 100,
			factors: []string{
				"Mallampati class 4", "ASA 5", "BMI 40 (obesity)",
				"History of difficult airway", "Patil-Aldrete 3", "Inter-incisor distance < 3cm",
			},
		},
		{
			name:    "unrecorded distance ignored",
			a:       models.Assessment{ASA: 2, Mallampati: 2},
			score:   0,
			factors: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, factors := Airway(tt.a)
			if score != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, score)
			}
			if diff := cmp.Diff(tt.factors, factors); diff != "" {
				t.Errorf("factors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBucket(t *testing.T) {
	tests := map[int]models.AlertSeverity{
		0:   models.AlertSeverityLow,
		39:  models.AlertSeverityLow,
		40:  models.AlertSeverityModerate,
		60:  models.AlertSeverityHigh,
		79:  models.AlertSeverityHigh,
		80:  models.AlertSeverityCritical,
		100: models.AlertSeverityCritical,
	}
	for score, want := range tests {
		if got := Bucket(score); got != want {
			t.Errorf("Bucket(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestAlertSeverity(t *testing.T) {
	if _, ok := AlertSeverity(69); ok {
		t.Error("expected no alert below 70")
	}
	if sev, ok := AlertSeverity(70); !ok || sev != models.AlertSeverityHigh {
		t.Errorf("expected HIGH at 70, got %s %v", sev, ok)
	}
	if sev, ok := AlertSeverity(85); !ok || sev != models.AlertSeverityCritical {
		t.Errorf("expected CRITICAL at 85, got %s %v", sev, ok)
	}
}
