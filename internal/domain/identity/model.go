// Package identity stores patient and doctor accounts and answers the
// questions the rest of the system asks about them: who owns this email,
// does this password match, which doctors practice in this county.
package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// Counties the platform operates in. Registration rejects anything else.
var Counties = []string{
	"Nairobi", "Mombasa", "Kisumu", "Nakuru", "Eldoret", "Thika",
	"Malindi", "Kitale", "Garissa", "Kakamega", "Nyeri", "Lamu",
}

// User is a registered account. Doctors additionally carry a specialization
// and a consultation fee in Kenyan shillings; both stay nil for patients.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	County       string    `json:"county"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`

	Specialization  *string `json:"specialization,omitempty"`
	ConsultationFee *int64  `json:"consultation_fee,omitempty"`
	Available       bool    `json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsDoctor reports whether the account is a doctor account.
func (u *User) IsDoctor() bool {
	return u.Role == access.RoleDoctor
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Kenyan mobile numbers: +254 or 0 prefix followed by a 7xx/1xx number.
	phoneRe = regexp.MustCompile(`^(?:\+254|0)[17]\d{8}$`)
)

func validCounty(county string) bool {
	for _, c := range Counties {
		if c == county {
			return true
		}
	}
	return false
}

// Validate checks the fields set at registration time. The password is
// validated separately because only its hash lives on the struct.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return apperr.Validation("name", "is required")
	}
	if !emailRe.MatchString(u.Email) {
		return apperr.Validation("email", "must be a valid email address")
	}
	if !phoneRe.MatchString(u.Phone) {
		return apperr.Validation("phone", "must be a valid Kenyan phone number")
	}
	if !validCounty(u.County) {
		return apperr.Validation("county", "is not a supported county")
	}
	if !access.ValidRole(u.Role) {
		return apperr.Validation("role", "must be patient or doctor")
	}
	if u.IsDoctor() {
		if u.Specialization == nil || strings.TrimSpace(*u.Specialization) == "" {
			return apperr.Validation("specialization", "is required for doctors")
		}
		if u.ConsultationFee == nil || *u.ConsultationFee < 0 {
			return apperr.Validation("consultation_fee", "must be a non-negative amount")
		}
	} else {
		if u.Specialization != nil || u.ConsultationFee != nil {
			return apperr.Validation("role", "patients cannot carry doctor attributes")
		}
	}
	return nil
}
