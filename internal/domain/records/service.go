package records

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// AppointmentSource resolves an appointment to the two parties on it and
// its current status, so record creation can verify the author and reject
// cancelled bookings.
type AppointmentSource interface {
	Appointment(ctx context.Context, id uuid.UUID) (ref access.AppointmentRef, status string, err error)
}

// Notifier posts a notification to a user, best-effort.
type Notifier interface {
	Post(ctx context.Context, userID uuid.UUID, ntype, title, message, actionURL string) error
}

// CreateInput carries the record fields a doctor submits.
type CreateInput struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	Diagnosis     string     `json:"diagnosis"`
	Prescription  []string   `json:"prescription"`
	Notes         string     `json:"notes"`
	VitalSigns    VitalSigns `json:"vital_signs"`
	LabResults    []string   `json:"lab_results"`
}

// UpdateInput is a partial update: nil fields keep their stored values.
type UpdateInput struct {
	Diagnosis    *string     `json:"diagnosis"`
	Prescription *[]string   `json:"prescription"`
	Notes        *string     `json:"notes"`
	VitalSigns   *VitalSigns `json:"vital_signs"`
	LabResults   *[]string   `json:"lab_results"`
}

type Service struct {
	repo     RecordRepository
	appts    AppointmentSource
	notifier Notifier
	log      zerolog.Logger
}

func NewService(repo RecordRepository, appts AppointmentSource, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{repo: repo, appts: appts, notifier: notifier, log: log}
}

// Create authors a record against an appointment. Only the appointment's
// doctor may write one, and not against a cancelled booking. The patient
// gets a prescription notification.
func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (*MedicalRecord, error) {
	rec := &MedicalRecord{
		AppointmentID: in.AppointmentID,
		Diagnosis:     in.Diagnosis,
		Prescription:  in.Prescription,
		Notes:         in.Notes,
		VitalSigns:    in.VitalSigns,
		LabResults:    in.LabResults,
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	ref, status, err := s.appts.Appointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if err := access.CanCreateRecord(actor, ref); err != nil {
		return nil, err
	}
	if status == "cancelled" {
		return nil, apperr.Validation("appointment_id", "appointment is cancelled")
	}

	rec.PatientID = ref.PatientID
	rec.DoctorID = ref.DoctorID
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("record_id", rec.ID.String()).
		Str("appointment_id", rec.AppointmentID.String()).
		Msg("medical record created")

	s.notify(ctx, rec.PatientID, "prescription", "New medical record",
		"Your doctor added a medical record for your recent appointment.",
		"/medical-records/"+rec.ID.String())
	return rec, nil
}

// Update applies a partial update to a record. Only the record's doctor may
// change it; an empty diagnosis never erases the stored one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, actor access.Actor, in UpdateInput) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := access.AppointmentRef{PatientID: rec.PatientID, DoctorID: rec.DoctorID}
	if err := access.CanMutateRecord(actor, ref); err != nil {
		return nil, err
	}

	if in.Diagnosis != nil {
		if *in.Diagnosis == "" {
			return nil, apperr.Validation("diagnosis", "cannot be erased")
		}
		rec.Diagnosis = *in.Diagnosis
	}
	if in.Prescription != nil {
		rec.Prescription = *in.Prescription
	}
	if in.Notes != nil {
		rec.Notes = *in.Notes
	}
	if in.VitalSigns != nil {
		rec.VitalSigns = *in.VitalSigns
	}
	if in.LabResults != nil {
		rec.LabResults = *in.LabResults
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info().Str("record_id", rec.ID.String()).Msg("medical record updated")
	return rec, nil
}

// Get returns one record, visible only to its patient and doctor. A
// non-participant gets Forbidden, never an empty result.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor access.Actor) (*MedicalRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := access.AppointmentRef{PatientID: rec.PatientID, DoctorID: rec.DoctorID}
	if err := access.CanViewRecord(actor, ref); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListForUser lists the records where the actor is the patient or the
// doctor, newest first.
func (s *Service) ListForUser(ctx context.Context, actor access.Actor, limit, offset int) ([]*MedicalRecord, int, error) {
	if actor.Role == access.RoleDoctor {
		return s.repo.ListByDoctor(ctx, actor.ID, limit, offset)
	}
	return s.repo.ListByPatient(ctx, actor.ID, limit, offset)
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, ntype, title, message, actionURL string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Post(ctx, userID, ntype, title, message, actionURL); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("notification post failed")
	}
}
