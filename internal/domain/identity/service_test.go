package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
)

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.ErrDuplicateIdentity
		}
	}
	u.ID = uuid.New()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUserRepo) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	u, ok := m.users[id]
	if !ok || u.Role != access.RoleDoctor {
		return apperr.ErrNotFound
	}
	u.Available = available
	return nil
}

func (m *mockUserRepo) ListDoctors(ctx context.Context, f DoctorFilter, limit, offset int) ([]*User, int, error) {
	var out []*User
	for _, u := range m.users {
		if u.Role != access.RoleDoctor {
			continue
		}
		if f.County != "" && u.County != f.County {
			continue
		}
		if f.Specialization != "" && (u.Specialization == nil ||
			!strings.Contains(strings.ToLower(*u.Specialization), strings.ToLower(f.Specialization))) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func patientInput() RegisterInput {
	return RegisterInput{
		Name:     "Wanjiku Kamau",
		Email:    "wanjiku@example.com",
		Password: "secret123",
		Phone:    "+254712345678",
		County:   "Nairobi",
		Role:     access.RolePatient,
	}
}

func doctorInput() RegisterInput {
	spec := "Cardiology"
	fee := int64(2500)
	return RegisterInput{
		Name:            "Dr. Otieno Odhiambo",
		Email:           "otieno@example.com",
		Password:        "secret123",
		Phone:           "0722334455",
		County:          "Kisumu",
		Role:            access.RoleDoctor,
		Specialization:  &spec,
		ConsultationFee: &fee,
	}
}

func TestRegister_Patient(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), patientInput())
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == uuid.Nil {
		t.Error("id not assigned")
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret123" {
		t.Error("password not hashed")
	}
	if u.Available {
		t.Error("patients must not be marked available")
	}
}

func TestRegister_DoctorDefaultsAvailable(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), doctorInput())
	if err != nil {
		t.Fatal(err)
	}
	if !u.Available {
		t.Error("new doctors should start available")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), patientInput()); err != nil {
		t.Fatal(err)
	}
	// Same email in a different case still collides.
	in := patientInput()
	in.Email = "WANJIKU@example.com"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, apperr.ErrDuplicateIdentity) {
		t.Errorf("err = %v, want ErrDuplicateIdentity", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty name", func(in *RegisterInput) { in.Name = "  " }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }},
		{"bad phone", func(in *RegisterInput) { in.Phone = "12345" }},
		{"unknown county", func(in *RegisterInput) { in.County = "Atlantis" }},
		{"bad role", func(in *RegisterInput) { in.Role = "admin" }},
		{"patient with fee", func(in *RegisterInput) { fee := int64(100); in.ConsultationFee = &fee }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService()
			in := patientInput()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			if !apperr.IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestRegister_DoctorRequiresSpecialization(t *testing.T) {
	svc, _ := newTestService()
	in := doctorInput()
	in.Specialization = nil
	if _, err := svc.Register(context.Background(), in); !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestVerifyCredentials(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), patientInput())
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.VerifyCredentials(context.Background(), "Wanjiku@Example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID {
		t.Error("wrong user returned")
	}
}

func TestVerifyCredentials_SameErrorForBothFailures(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), patientInput()); err != nil {
		t.Fatal(err)
	}

	_, unknownErr := svc.VerifyCredentials(context.Background(), "nobody@example.com", "secret123")
	_, wrongPwErr := svc.VerifyCredentials(context.Background(), "wanjiku@example.com", "wrong")

	if !errors.Is(unknownErr, apperr.ErrInvalidCredentials) || !errors.Is(wrongPwErr, apperr.ErrInvalidCredentials) {
		t.Fatalf("unknown=%v wrongpw=%v, want ErrInvalidCredentials for both", unknownErr, wrongPwErr)
	}
	if unknownErr.Error() != wrongPwErr.Error() {
		t.Error("error messages differ; accounts can be enumerated")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	u, err := svc.Register(context.Background(), patientInput())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "newsecret"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "secret123", "newsecret"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VerifyCredentials(context.Background(), u.Email, "newsecret"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := svc.VerifyCredentials(context.Background(), u.Email, "secret123"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}
}

func TestListDoctors_Filters(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Register(context.Background(), doctorInput()); err != nil {
		t.Fatal(err)
	}
	other := doctorInput()
	other.Email = "akinyi@example.com"
	other.County = "Nairobi"
	spec := "Pediatrics"
	other.Specialization = &spec
	if _, err := svc.Register(context.Background(), other); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(context.Background(), patientInput()); err != nil {
		t.Fatal(err)
	}

	all, total, err := svc.ListDoctors(context.Background(), DoctorFilter{}, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("total = %d, want 2 doctors only", total)
	}

	kisumu, _, err := svc.ListDoctors(context.Background(), DoctorFilter{County: "Kisumu"}, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(kisumu) != 1 || kisumu[0].County != "Kisumu" {
		t.Errorf("county filter returned %d results", len(kisumu))
	}

	if _, _, err := svc.ListDoctors(context.Background(), DoctorFilter{County: "Atlantis"}, 20, 0); !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error for unknown county", err)
	}
}

func TestSetAvailability_DoctorOnly(t *testing.T) {
	svc, _ := newTestService()
	doc, err := svc.Register(context.Background(), doctorInput())
	if err != nil {
		t.Fatal(err)
	}
	pat, err := svc.Register(context.Background(), patientInput())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.SetAvailability(context.Background(), access.Actor{ID: pat.ID, Role: access.RolePatient}, false); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if err := svc.SetAvailability(context.Background(), access.Actor{ID: doc.ID, Role: access.RoleDoctor}, false); err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetUser(context.Background(), doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Available {
		t.Error("availability not persisted")
	}
}
