// Package access is the single rule set deciding which appointments, medical
// records, and notifications an authenticated user may see or change. Every
// store consults it before acting; a denial must abort the operation, so all
// checks return apperr.ErrForbidden rather than filtering silently.
//
// All functions are pure and safe for concurrent use.
package access

import (
	"github.com/google/uuid"

	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// Roles are fixed at registration and never change.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// ValidRole reports whether role is one of the two registered roles.
func ValidRole(role string) bool {
	return role == RolePatient || role == RoleDoctor
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// AppointmentRef identifies the two parties attached to an appointment. The
// same reference pair authorizes the medical record linked to it.
type AppointmentRef struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

func (r AppointmentRef) participant(a Actor) bool {
	switch a.Role {
	case RolePatient:
		return a.ID == r.PatientID
	case RoleDoctor:
		return a.ID == r.DoctorID
	default:
		return false
	}
}

// CanViewAppointment permits only the referenced patient or doctor.
func CanViewAppointment(a Actor, ref AppointmentRef) error {
	if !ref.participant(a) {
		return apperr.ErrForbidden
	}
	return nil
}

// CanTransition decides who may move an appointment to newStatus: the
// appointment's doctor may set any status, the appointment's patient may only
// cancel. Whether newStatus is reachable from the current one is the
// ledger's concern, not the policy's.
func CanTransition(a Actor, ref AppointmentRef, newStatus string) error {
	if !ref.participant(a) {
		return apperr.ErrForbidden
	}
	if a.Role == RolePatient && newStatus != "cancelled" {
		return apperr.ErrForbidden
	}
	return nil
}

// CanRecordPayment permits only the appointment's patient; the payment flow
// runs on the patient side.
func CanRecordPayment(a Actor, ref AppointmentRef) error {
	if a.Role != RolePatient || a.ID != ref.PatientID {
		return apperr.ErrForbidden
	}
	return nil
}

// CanCreateRecord permits only the doctor on the linked appointment.
func CanCreateRecord(a Actor, ref AppointmentRef) error {
	if a.Role != RoleDoctor || a.ID != ref.DoctorID {
		return apperr.ErrForbidden
	}
	return nil
}

// CanMutateRecord has the same rule as creation: only the record's doctor.
func CanMutateRecord(a Actor, ref AppointmentRef) error {
	return CanCreateRecord(a, ref)
}

// CanViewRecord permits the record's patient and the record's doctor.
func CanViewRecord(a Actor, ref AppointmentRef) error {
	if !ref.participant(a) {
		return apperr.ErrForbidden
	}
	return nil
}

// CanAccessNotification permits only the notification's owner, for reads,
// mark-read, and deletion alike.
func CanAccessNotification(a Actor, ownerID uuid.UUID) error {
	if a.ID != ownerID {
		return apperr.ErrForbidden
	}
	return nil
}
