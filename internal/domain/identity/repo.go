package identity

import (
	"context"

	"github.com/google/uuid"
)

// DoctorFilter narrows a doctor directory listing. Empty fields match all.
type DoctorFilter struct {
	County         string
	Specialization string
}

// UserRepository is the persistence boundary for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	SetAvailability(ctx context.Context, id uuid.UUID, available bool) error
	ListDoctors(ctx context.Context, f DoctorFilter, limit, offset int) ([]*User, int, error)
}
