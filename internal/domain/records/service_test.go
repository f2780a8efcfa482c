package records

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
)

type mockRecordRepo struct {
	recs map[uuid.UUID]*MedicalRecord
}

func newMockRecordRepo() *mockRecordRepo {
	return &mockRecordRepo{recs: make(map[uuid.UUID]*MedicalRecord)}
}

func (m *mockRecordRepo) Create(ctx context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	r.Version = 1
	cp := *r
	m.recs[r.ID] = &cp
	return nil
}

func (m *mockRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.recs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRecordRepo) Update(ctx context.Context, r *MedicalRecord) error {
	stored, ok := m.recs[r.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	if stored.Version != r.Version {
		return apperr.ErrConflict
	}
	cp := *r
	cp.Version++
	cp.CreatedAt = stored.CreatedAt
	m.recs[r.ID] = &cp
	r.Version++
	return nil
}

func (m *mockRecordRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return m.list(func(r *MedicalRecord) bool { return r.PatientID == patientID })
}

func (m *mockRecordRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return m.list(func(r *MedicalRecord) bool { return r.DoctorID == doctorID })
}

func (m *mockRecordRepo) list(match func(*MedicalRecord) bool) ([]*MedicalRecord, int, error) {
	var out []*MedicalRecord
	for _, r := range m.recs {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type apptEntry struct {
	ref    access.AppointmentRef
	status string
}

type mockApptSource struct {
	appts map[uuid.UUID]apptEntry
}

func (m *mockApptSource) Appointment(ctx context.Context, id uuid.UUID) (access.AppointmentRef, string, error) {
	e, ok := m.appts[id]
	if !ok {
		return access.AppointmentRef{}, "", apperr.ErrNotFound
	}
	return e.ref, e.status, nil
}

type recordingNotifier struct {
	posts []uuid.UUID
}

func (m *recordingNotifier) Post(ctx context.Context, userID uuid.UUID, ntype, title, message, actionURL string) error {
	m.posts = append(m.posts, userID)
	return nil
}

type fixture struct {
	svc      *Service
	appts    *mockApptSource
	notifier *recordingNotifier
	apptID   uuid.UUID
	patient  access.Actor
	doctor   access.Actor
}

func newFixture() *fixture {
	patientID, doctorID, apptID := uuid.New(), uuid.New(), uuid.New()
	appts := &mockApptSource{appts: map[uuid.UUID]apptEntry{
		apptID: {
			ref:    access.AppointmentRef{PatientID: patientID, DoctorID: doctorID},
			status: "completed",
		},
	}}
	notifier := &recordingNotifier{}
	return &fixture{
		svc:      NewService(newMockRecordRepo(), appts, notifier, zerolog.Nop()),
		appts:    appts,
		notifier: notifier,
		apptID:   apptID,
		patient:  access.Actor{ID: patientID, Role: access.RolePatient},
		doctor:   access.Actor{ID: doctorID, Role: access.RoleDoctor},
	}
}

func (f *fixture) createInput() CreateInput {
	bp := "120/80"
	hr := 72
	return CreateInput{
		AppointmentID: f.apptID,
		Diagnosis:     "malaria",
		Prescription:  []string{"artemether 80mg", "paracetamol 500mg"},
		Notes:         "review in two weeks",
		VitalSigns:    VitalSigns{BloodPressure: &bp, HeartRate: &hr},
		LabResults:    []string{"blood smear: positive"},
	}
}

func (f *fixture) create(t *testing.T) *MedicalRecord {
	t.Helper()
	rec, err := f.svc.Create(context.Background(), f.doctor, f.createInput())
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestCreate_CopiesPartiesFromAppointment(t *testing.T) {
	f := newFixture()
	rec := f.create(t)
	if rec.PatientID != f.patient.ID || rec.DoctorID != f.doctor.ID {
		t.Error("parties not copied from the appointment")
	}
}

func TestCreate_NotifiesPatient(t *testing.T) {
	f := newFixture()
	f.create(t)
	if len(f.notifier.posts) != 1 || f.notifier.posts[0] != f.patient.ID {
		t.Errorf("posts = %v, want one to the patient", f.notifier.posts)
	}
}

func TestCreate_PatientForbidden(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Create(context.Background(), f.patient, f.createInput()); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestCreate_OtherDoctorForbidden(t *testing.T) {
	f := newFixture()
	other := access.Actor{ID: uuid.New(), Role: access.RoleDoctor}
	if _, err := f.svc.Create(context.Background(), other, f.createInput()); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestCreate_CancelledAppointmentRejected(t *testing.T) {
	f := newFixture()
	e := f.appts.appts[f.apptID]
	e.status = "cancelled"
	f.appts.appts[f.apptID] = e

	if _, err := f.svc.Create(context.Background(), f.doctor, f.createInput()); !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestCreate_MissingDiagnosis(t *testing.T) {
	f := newFixture()
	in := f.createInput()
	in.Diagnosis = "  "
	if _, err := f.svc.Create(context.Background(), f.doctor, in); !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUpdate_PartialMerge(t *testing.T) {
	f := newFixture()
	rec := f.create(t)

	notes := "symptoms cleared"
	got, err := f.svc.Update(context.Background(), rec.ID, f.doctor, UpdateInput{Notes: &notes})
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes != notes {
		t.Errorf("notes = %q", got.Notes)
	}
	if got.Diagnosis != rec.Diagnosis {
		t.Error("omitted diagnosis was not preserved")
	}
	if len(got.Prescription) != len(rec.Prescription) {
		t.Error("omitted prescription was not preserved")
	}
	if got.Version != rec.Version+1 {
		t.Errorf("version = %d, want %d", got.Version, rec.Version+1)
	}
}

func TestUpdate_DiagnosisNeverErased(t *testing.T) {
	f := newFixture()
	rec := f.create(t)

	empty := ""
	if _, err := f.svc.Update(context.Background(), rec.ID, f.doctor, UpdateInput{Diagnosis: &empty}); !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUpdate_PatientForbidden(t *testing.T) {
	f := newFixture()
	rec := f.create(t)
	notes := "patient edit"
	if _, err := f.svc.Update(context.Background(), rec.ID, f.patient, UpdateInput{Notes: &notes}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestGet_NonParticipantGetsForbiddenNotEmpty(t *testing.T) {
	f := newFixture()
	rec := f.create(t)

	stranger := access.Actor{ID: uuid.New(), Role: access.RoleDoctor}
	_, err := f.svc.Get(context.Background(), rec.ID, stranger)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}

	if _, err := f.svc.Get(context.Background(), rec.ID, f.patient); err != nil {
		t.Errorf("patient read failed: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), rec.ID, f.doctor); err != nil {
		t.Errorf("doctor read failed: %v", err)
	}
}

func TestListForUser(t *testing.T) {
	f := newFixture()
	f.create(t)
	f.create(t)

	recs, total, err := f.svc.ListForUser(context.Background(), f.patient, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(recs) != 2 {
		t.Errorf("patient sees %d, want 2", total)
	}

	stranger := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	none, _, err := f.svc.ListForUser(context.Background(), stranger, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Error("stranger should see nothing")
	}
}
