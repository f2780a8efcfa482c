// Package records stores the medical records doctors author against
// appointments: diagnosis, prescriptions, vital signs, and lab results.
package records

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// VitalSigns measured during a consultation. All fields are optional.
type VitalSigns struct {
	BloodPressure *string  `json:"blood_pressure,omitempty"`
	HeartRate     *int     `json:"heart_rate,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
}

// MedicalRecord is one record authored by the appointment's doctor. The
// patient and doctor references are copied from the appointment at creation
// and never change afterwards.
type MedicalRecord struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	Diagnosis     string     `json:"diagnosis"`
	Prescription  []string   `json:"prescription"`
	Notes         string     `json:"notes,omitempty"`
	VitalSigns    VitalSigns `json:"vital_signs"`
	LabResults    []string   `json:"lab_results"`
	Version       int        `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks the fields supplied at creation time.
func (r *MedicalRecord) Validate() error {
	if r.AppointmentID == uuid.Nil {
		return apperr.Validation("appointment_id", "is required")
	}
	if strings.TrimSpace(r.Diagnosis) == "" {
		return apperr.Validation("diagnosis", "is required")
	}
	return nil
}
