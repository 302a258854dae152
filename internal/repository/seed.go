package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

var (
	sampleFirstNames    = []string{"Ana", "Luis", "María", "José", "Carmen", "Jorge", "Lucía", "Miguel", "Elena", "Raúl"}
	sampleLastNames     = []string{"García", "Hernández", "López", "Martínez", "Pérez", "Sánchez", "Ramírez", "Torres"}
	sampleComplications = []string{"", "", "", "Hypotension", "Desaturation", "Laryngospasm"}
)

// SamplePrefix marks folios created by Seed.
const SamplePrefix = "SAMPLE-"

// Seed adds n sample assessments for physician, spread over the last 90
// days. The same seed always produces the same data. About 80% of the
// patients have completed surgery.
func Seed(ctx context.Context, repo AssessmentRepository, n int, physician string, seed uint64, now time.Time) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for i := 0; i < n; i++ {
		report := now.AddDate(0, 0, -rng.IntN(90))
		completed := rng.Float64() < 0.8

		a := &models.Assessment{
			Folio:                  fmt.Sprintf("%s%04d", SamplePrefix, i+1),
			PatientName:            sampleFirstNames[rng.IntN(len(sampleFirstNames))] + " " + sampleLastNames[rng.IntN(len(sampleLastNames))],
			Physician:              physician,
			BirthDate:              now.AddDate(-(18 + rng.IntN(70)), -rng.IntN(12), 0),
			ReportDate:             report,
			ASA:                    1 + rng.IntN(5),
			Mallampati:             1 + rng.IntN(4),
			PatilAldrete:           1 + rng.IntN(4),
			InterIncisorCm:         float64(25+rng.IntN(30)) / 10,
			BMI:                    float64(1800+rng.IntN(2400)) / 100,
			DifficultAirwayHistory: rng.Float64() < 0.1,
			SurgeryCompleted:       completed,
			CreatedAt:              report,
		}
		if completed {
			a.IntubationTries = 1 + rng.IntN(3)
			a.Complications = sampleComplications[rng.IntN(len(sampleComplications))]
			a.Morbidity = a.Complications != "" && rng.Float64() < 0.3
		}

		if err := repo.Add(ctx, a); err != nil {
			return fmt.Errorf("error seeding assessment %d: %w", i+1, err)
		}
	}
	return nil
}
