package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/surgery-dashboard/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

var (
	_ AssessmentRepository = (*SQLiteDB)(nil)
	_ DismissalRepository  = (*SQLiteDB)(nil)
)

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS assessments (
			folio TEXT PRIMARY KEY,
			patient_name TEXT NOT NULL,
			physician TEXT NOT NULL,
			birth_date DATETIME,
			report_date DATETIME NOT NULL,
			asa INTEGER NOT NULL,
			mallampati INTEGER NOT NULL,
			patil_aldrete INTEGER NOT NULL DEFAULT 0,
			inter_incisor_cm REAL NOT NULL DEFAULT 0,
			bmi REAL NOT NULL DEFAULT 0,
			difficult_airway_history INTEGER NOT NULL DEFAULT 0,
			surgery_completed INTEGER NOT NULL DEFAULT 0,
			complications TEXT NOT NULL DEFAULT '',
			morbidity INTEGER NOT NULL DEFAULT 0,
			mortality INTEGER NOT NULL DEFAULT 0,
			intubation_tries INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS dismissed_alerts (
			alert_id TEXT PRIMARY KEY,
			dismissed_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_assessments_report_date ON assessments(report_date);
		CREATE INDEX IF NOT EXISTS idx_assessments_physician ON assessments(physician);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

const assessmentColumns = `folio, patient_name, physician, birth_date, report_date, asa, mallampati,
	patil_aldrete, inter_incisor_cm, bmi, difficult_airway_history, surgery_completed,
	complications, morbidity, mortality, intubation_tries, created_at`

func (s *SQLiteDB) Add(ctx context.Context, a *models.Assessment) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO assessments (`+assessmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Folio, a.PatientName, a.Physician, a.BirthDate.UTC(), a.ReportDate.UTC(),
		a.ASA, a.Mallampati, a.PatilAldrete, a.InterIncisorCm, a.BMI,
		a.DifficultAirwayHistory, a.SurgeryCompleted, a.Complications,
		a.Morbidity, a.Mortality, a.IntubationTries, createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error adding assessment %s: %w", a.Folio, err)
	}
	return nil
}

func (s *SQLiteDB) GetByFolio(ctx context.Context, folio string) (*models.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE folio = ?`, folio)

	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting assessment %s: %w", folio, err)
	}
	return a, nil
}

func (s *SQLiteDB) Exists(ctx context.Context, folio string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM assessments WHERE folio = ?)`, folio).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking assessment %s: %w", folio, err)
	}
	return exists, nil
}

func (s *SQLiteDB) ListAssessments(ctx context.Context, opts Filter) ([]models.Assessment, error) {
	var (
		where []string
		args  []any
	)
	if opts.Physician != "" {
		where = append(where, "physician = ?")
		args = append(args, opts.Physician)
	}
	if opts.Since != nil {
		where = append(where, "report_date >= ?")
		args = append(args, opts.Since.UTC())
	}

	query := `SELECT ` + assessmentColumns + ` FROM assessments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY report_date DESC, folio"
	if opts.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing assessments: %w", err)
	}
	defer rows.Close()

	var out []models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning assessment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *SQLiteDB) DismissAlert(ctx context.Context, alertID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO dismissed_alerts (alert_id, dismissed_at) VALUES (?, ?)`,
		alertID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error dismissing alert %s: %w", alertID, err)
	}
	return nil
}

func (s *SQLiteDB) DismissedAlerts(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT alert_id FROM dismissed_alerts`)
	if err != nil {
		return nil, fmt.Errorf("error listing dismissed alerts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning dismissed alert: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (*models.Assessment, error) {
	var a models.Assessment
	var birth sql.NullTime
	err := row.Scan(
		&a.Folio, &a.PatientName, &a.Physician, &birth, &a.ReportDate,
		&a.ASA, &a.Mallampati, &a.PatilAldrete, &a.InterIncisorCm, &a.BMI,
		&a.DifficultAirwayHistory, &a.SurgeryCompleted, &a.Complications,
		&a.Morbidity, &a.Mortality, &a.IntubationTries, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if birth.Valid {
		a.BirthDate = birth.Time
	}
	return &a, nil
}
