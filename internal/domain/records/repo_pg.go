package records

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afyalink/afyalink/internal/platform/apperr"
)

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordColumns = `id, patient_id, doctor_id, appointment_id, diagnosis, prescription,
	notes, blood_pressure, heart_rate, temperature, weight, height, lab_results,
	version, created_at, updated_at`

func (r *recordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	rec.Version = 1
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medical_records (
			id, patient_id, doctor_id, appointment_id, diagnosis, prescription,
			notes, blood_pressure, heart_rate, temperature, weight, height,
			lab_results, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.AppointmentID, rec.Diagnosis, rec.Prescription,
		rec.Notes, rec.VitalSigns.BloodPressure, rec.VitalSigns.HeartRate, rec.VitalSigns.Temperature,
		rec.VitalSigns.Weight, rec.VitalSigns.Height, rec.LabResults, rec.Version,
	)
	return err
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM medical_records WHERE id = $1`, id))
}

func (r *recordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE medical_records SET
			diagnosis = $2, prescription = $3, notes = $4,
			blood_pressure = $5, heart_rate = $6, temperature = $7, weight = $8, height = $9,
			lab_results = $10, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $11`,
		rec.ID, rec.Diagnosis, rec.Prescription, rec.Notes,
		rec.VitalSigns.BloodPressure, rec.VitalSigns.HeartRate, rec.VitalSigns.Temperature,
		rec.VitalSigns.Weight, rec.VitalSigns.Height, rec.LabResults, rec.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, rec.ID); errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrConflict
	}
	rec.Version++
	return nil
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *recordRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *recordRepoPG) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_records WHERE `+column+` = $1`, id).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM medical_records WHERE `+column+` = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []*MedicalRecord
	for rows.Next() {
		rec := &MedicalRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.AppointmentID, &rec.Diagnosis, &rec.Prescription,
			&rec.Notes, &rec.VitalSigns.BloodPressure, &rec.VitalSigns.HeartRate, &rec.VitalSigns.Temperature,
			&rec.VitalSigns.Weight, &rec.VitalSigns.Height, &rec.LabResults,
			&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

func (r *recordRepoPG) scan(row pgx.Row) (*MedicalRecord, error) {
	rec := &MedicalRecord{}
	err := row.Scan(
		&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.AppointmentID, &rec.Diagnosis, &rec.Prescription,
		&rec.Notes, &rec.VitalSigns.BloodPressure, &rec.VitalSigns.HeartRate, &rec.VitalSigns.Temperature,
		&rec.VitalSigns.Weight, &rec.VitalSigns.Height, &rec.LabResults,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
