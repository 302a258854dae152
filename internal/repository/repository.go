package repository

import (
	"context"
	"time"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

type Filter struct {
	Limit     int
	Offset    int
	Physician string     // empty matches every physician
	Since     *time.Time // report date on or after
}

type AssessmentRepository interface {
	Add(ctx context.Context, a *models.Assessment) error
	GetByFolio(ctx context.Context, folio string) (*models.Assessment, error)
	Exists(ctx context.Context, folio string) (bool, error)
	ListAssessments(ctx context.Context, opts Filter) ([]models.Assessment, error)
}

type DismissalRepository interface {
	DismissAlert(ctx context.Context, alertID string) error
	DismissedAlerts(ctx context.Context) (map[string]bool, error)
}
