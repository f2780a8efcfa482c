package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistence boundary for the ledger.
// Update must apply only when the stored version matches a.Version and
// return apperr.ErrConflict otherwise.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
