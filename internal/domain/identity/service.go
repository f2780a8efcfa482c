package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
	"github.com/afyalink/afyalink/internal/platform/auth"
)

const minPasswordLen = 6

// RegisterInput carries the fields a new account is created from.
type RegisterInput struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	Phone           string  `json:"phone"`
	County          string  `json:"county"`
	Role            string  `json:"role"`
	Specialization  *string `json:"specialization,omitempty"`
	ConsultationFee *int64  `json:"consultation_fee,omitempty"`
}

type Service struct {
	repo UserRepository
	log  zerolog.Logger
}

func NewService(repo UserRepository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates an account. Emails are stored lowercase so uniqueness is
// case-insensitive. A reused email surfaces as ErrDuplicateIdentity.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("password", "must be at least 6 characters")
	}

	u := &User{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:           strings.TrimSpace(in.Phone),
		County:          in.County,
		Role:            in.Role,
		Specialization:  in.Specialization,
		ConsultationFee: in.ConsultationFee,
	}
	if u.IsDoctor() {
		u.Available = true
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID.String()).Str("role", u.Role).Msg("user registered")
	return u, nil
}

// VerifyCredentials resolves an email/password pair to the account it belongs
// to. Unknown email and wrong password both return ErrInvalidCredentials so
// the response never reveals whether the email is registered.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

// GetUser fetches a single account by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// RoleOf reports the role stored for id, used by other stores to validate
// the parties on a booking.
func (s *Service) RoleOf(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// ListDoctors lists doctor accounts matching the filter.
func (s *Service) ListDoctors(ctx context.Context, f DoctorFilter, limit, offset int) ([]*User, int, error) {
	if f.County != "" && !validCounty(f.County) {
		return nil, 0, apperr.Validation("county", "is not a supported county")
	}
	return s.repo.ListDoctors(ctx, f, limit, offset)
}

// ChangePassword rotates the caller's password after re-verifying the
// current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if len(next) < minPasswordLen {
		return apperr.Validation("new_password", "must be at least 6 characters")
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return apperr.ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID.String()).Msg("password changed")
	return nil
}

// SetAvailability toggles whether a doctor appears as accepting bookings.
// Patients have no availability flag.
func (s *Service) SetAvailability(ctx context.Context, actor access.Actor, available bool) error {
	if actor.Role != access.RoleDoctor {
		return apperr.ErrForbidden
	}
	return s.repo.SetAvailability(ctx, actor.ID, available)
}
