package records

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository is the persistence boundary for medical records. Update
// must apply only when the stored version matches r.Version and return
// apperr.ErrConflict otherwise.
type RecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error)
}
