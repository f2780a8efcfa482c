package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// UserDirectory answers role lookups so bookings can verify that the two
// parties exist and hold the expected roles.
type UserDirectory interface {
	RoleOf(ctx context.Context, id uuid.UUID) (string, error)
}

// Notifier posts a notification to a user. Posting is best-effort: a failed
// post never fails the booking or payment that triggered it.
type Notifier interface {
	Post(ctx context.Context, userID uuid.UUID, ntype, title, message, actionURL string) error
}

// CreateInput carries the booking fields a patient submits.
type CreateInput struct {
	DoctorID         uuid.UUID `json:"doctor_id"`
	AppointmentDate  time.Time `json:"appointment_date"`
	Symptoms         string    `json:"symptoms"`
	ConsultationType string    `json:"consultation_type"`
	Amount           int64     `json:"amount"`
}

type Service struct {
	repo     AppointmentRepository
	users    UserDirectory
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo AppointmentRepository, users UserDirectory, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{repo: repo, users: users, notifier: notifier, log: log, now: time.Now}
}

// Create books an appointment for the acting patient. Both parties must
// resolve to accounts with the matching role; the date must be in the
// future. Both parties get a booking notification.
func (s *Service) Create(ctx context.Context, actor access.Actor, in CreateInput) (*Appointment, error) {
	if actor.Role != access.RolePatient {
		return nil, apperr.ErrForbidden
	}

	a := &Appointment{
		PatientID:        actor.ID,
		DoctorID:         in.DoctorID,
		AppointmentDate:  in.AppointmentDate,
		Status:           StatusScheduled,
		Symptoms:         in.Symptoms,
		ConsultationType: in.ConsultationType,
		PaymentStatus:    PaymentPending,
		Amount:           in.Amount,
	}
	if err := a.Validate(s.now()); err != nil {
		return nil, err
	}

	role, err := s.users.RoleOf(ctx, in.DoctorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("doctor_id", "does not refer to a doctor")
		}
		return nil, err
	}
	if role != access.RoleDoctor {
		return nil, apperr.Validation("doctor_id", "does not refer to a doctor")
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("patient_id", a.PatientID.String()).
		Str("doctor_id", a.DoctorID.String()).
		Msg("appointment booked")

	when := a.AppointmentDate.Format("2 Jan 2006 15:04")
	s.notify(ctx, a.PatientID, "appointment", "Appointment booked",
		fmt.Sprintf("Your %s appointment on %s is confirmed.", a.ConsultationType, when),
		"/appointments/"+a.ID.String())
	s.notify(ctx, a.DoctorID, "appointment", "New appointment",
		fmt.Sprintf("A patient booked a %s consultation on %s.", a.ConsultationType, when),
		"/appointments/"+a.ID.String())
	return a, nil
}

// Get returns one appointment, visible only to its two parties.
func (s *Service) Get(ctx context.Context, id uuid.UUID, actor access.Actor) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanViewAppointment(actor, access.AppointmentRef{PatientID: a.PatientID, DoctorID: a.DoctorID}); err != nil {
		return nil, err
	}
	return a, nil
}

// GetUnchecked returns an appointment without consulting the policy. Only
// other stores use it, to resolve an appointment's parties before applying
// their own checks; handlers must go through Get.
func (s *Service) GetUnchecked(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// TransitionStatus moves an appointment through its lifecycle. Terminal
// states absorb and nothing returns to scheduled; who may set which status
// is the policy's call.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, actor access.Actor, newStatus string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := access.AppointmentRef{PatientID: a.PatientID, DoctorID: a.DoctorID}
	if err := access.CanTransition(actor, ref, newStatus); err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, newStatus) {
		return nil, apperr.ErrInvalidTransition
	}

	a.Status = newStatus
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("status", newStatus).
		Msg("appointment status changed")

	if newStatus == StatusCancelled {
		other := a.DoctorID
		if actor.ID == a.DoctorID {
			other = a.PatientID
		}
		s.notify(ctx, other, "appointment", "Appointment cancelled",
			"An appointment on your schedule was cancelled.",
			"/appointments/"+a.ID.String())
	}
	return a, nil
}

// RecordPayment stores the payment outcome reported by the patient's
// payment flow. It touches paymentStatus and amount only, never status.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, actor access.Actor, amount int64, outcome string) (*Appointment, error) {
	if outcome != PaymentPaid && outcome != PaymentFailed {
		return nil, apperr.Validation("payment_status", "must be paid or failed")
	}
	if amount < 0 {
		return nil, apperr.Validation("amount", "must be a non-negative amount")
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ref := access.AppointmentRef{PatientID: a.PatientID, DoctorID: a.DoctorID}
	if err := access.CanRecordPayment(actor, ref); err != nil {
		return nil, err
	}

	a.PaymentStatus = outcome
	a.Amount = amount
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", a.ID.String()).
		Str("payment_status", outcome).
		Int64("amount", amount).
		Msg("payment recorded")

	title, msg := "Payment received", fmt.Sprintf("Payment of KSh %d was received.", amount)
	if outcome == PaymentFailed {
		title, msg = "Payment failed", "Your payment did not go through. Please try again."
	}
	s.notify(ctx, a.PatientID, "system", title, msg, "/appointments/"+a.ID.String())
	return a, nil
}

// ListForUser lists the appointments where the actor is a party, newest
// first.
func (s *Service) ListForUser(ctx context.Context, actor access.Actor, limit, offset int) ([]*Appointment, int, error) {
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
