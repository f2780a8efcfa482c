// Package scheduling is the appointment ledger: bookings between one patient
// and one doctor, their status lifecycle, and the payment outcome recorded
// against them.
package scheduling

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// Appointment statuses. scheduled is the only non-terminal state.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// Payment outcomes.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Consultation types.
const (
	TypeInPerson = "in-person"
	TypeVideo    = "video"
	TypePhone    = "phone"
)

// Appointment is one booking. Version guards concurrent status and payment
// writes: every mutation bumps it and stale writers get ErrConflict.
type Appointment struct {
	ID               uuid.UUID `json:"id"`
	PatientID        uuid.UUID `json:"patient_id"`
	DoctorID         uuid.UUID `json:"doctor_id"`
	AppointmentDate  time.Time `json:"appointment_date"`
	Status           string    `json:"status"`
	Symptoms         string    `json:"symptoms"`
	Notes            string    `json:"notes,omitempty"`
	ConsultationType string    `json:"consultation_type"`
	PaymentStatus    string    `json:"payment_status"`
	Amount           int64     `json:"amount"`
	Version          int       `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether a status admits no further transitions.
func Terminal(s string) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransition reports whether an appointment may move from to next. A
// terminal state absorbs, and nothing returns to scheduled.
func CanTransition(from, next string) bool {
	if !ValidStatus(next) || next == StatusScheduled {
		return false
	}
	return from == StatusScheduled
}

func validConsultationType(t string) bool {
	switch t {
	case TypeInPerson, TypeVideo, TypePhone:
		return true
	}
	return false
}

// Validate checks the booking fields supplied at creation time.
func (a *Appointment) Validate(now time.Time) error {
	if a.PatientID == uuid.Nil {
		return apperr.Validation("patient_id", "is required")
	}
	if a.DoctorID == uuid.Nil {
		return apperr.Validation("doctor_id", "is required")
	}
	if !a.AppointmentDate.After(now) {
		return apperr.Validation("appointment_date", "must be in the future")
	}
	if strings.TrimSpace(a.Symptoms) == "" {
		return apperr.Validation("symptoms", "is required")
	}
	if !validConsultationType(a.ConsultationType) {
		return apperr.Validation("consultation_type", "must be in-person, video, or phone")
	}
	if a.Amount < 0 {
		return apperr.Validation("amount", "must be a non-negative amount")
	}
	return nil
}
