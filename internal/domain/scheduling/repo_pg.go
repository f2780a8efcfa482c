package scheduling

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afyalink/afyalink/internal/platform/apperr"
)

type apptRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) AppointmentRepository {
	return &apptRepoPG{pool: pool}
}

const apptColumns = `id, patient_id, doctor_id, appointment_date, status, symptoms,
	notes, consultation_type, payment_status, amount, version, created_at, updated_at`

func (r *apptRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.Version = 1
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (
			id, patient_id, doctor_id, appointment_date, status, symptoms,
			notes, consultation_type, payment_status, amount, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.Status, a.Symptoms,
		a.Notes, a.ConsultationType, a.PaymentStatus, a.Amount, a.Version,
	)
	return err
}

func (r *apptRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id))
}

// Update applies a versioned write: the row changes only if nobody else
// bumped the version since this appointment was read.
func (r *apptRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET
			status = $2, notes = $3, payment_status = $4, amount = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6`,
		a.ID, a.Status, a.Notes, a.PaymentStatus, a.Amount, a.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or a concurrent writer got there first.
		if _, err := r.GetByID(ctx, a.ID); errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrConflict
	}
	a.Version++
	return nil
}

func (r *apptRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *apptRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *apptRepoPG) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE `+column+` = $1`, id).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE `+column+` = $1
		 ORDER BY appointment_date DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		a := &Appointment{}
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Status, &a.Symptoms,
			&a.Notes, &a.ConsultationType, &a.PaymentStatus, &a.Amount, &a.Version,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		appts = append(appts, a)
	}
	return appts, total, rows.Err()
}

func (r *apptRepoPG) scan(row pgx.Row) (*Appointment, error) {
	a := &Appointment{}
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Status, &a.Symptoms,
		&a.Notes, &a.ConsultationType, &a.PaymentStatus, &a.Amount, &a.Version,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
