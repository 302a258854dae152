package models

import "time"

// Assessment is a pre-surgery airway assessment as stored by the dev API.
type Assessment struct {
	Folio                  string
	PatientName            string
	Physician              string
	BirthDate              time.Time
	ReportDate             time.Time
	ASA                    int     // ASA physical status, 1-6
	Mallampati             int     // 1-4
	PatilAldrete           int     // 1-4, 0 when not recorded
	InterIncisorCm         float64 // 0 when not recorded
	BMI                    float64 // 0 when not recorded
	DifficultAirwayHistory bool
	SurgeryCompleted       bool
	Complications          string
	Morbidity              bool
	Mortality              bool
	IntubationTries        int
	CreatedAt              time.Time
}
