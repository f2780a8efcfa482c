// Package notifications stores per-user in-app notifications. Other stores
// post into it on business events; users read, mark, and clear their own.
package notifications

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afyalink/afyalink/internal/platform/apperr"
)

// Notification types.
const (
	TypeAppointment  = "appointment"
	TypePrescription = "prescription"
	TypeReminder     = "reminder"
	TypeSystem       = "system"
)

// Notification is one message addressed to a single user. Every
// notification starts unread.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidType reports whether t is a known notification type.
func ValidType(t string) bool {
	switch t {
	case TypeAppointment, TypePrescription, TypeReminder, TypeSystem:
		return true
	}
	return false
}

// Validate checks the fields set when posting.
func (n *Notification) Validate() error {
	if n.UserID == uuid.Nil {
		return apperr.Validation("user_id", "is required")
	}
	if !ValidType(n.Type) {
		return apperr.Validation("type", "must be appointment, prescription, reminder, or system")
	}
	if strings.TrimSpace(n.Title) == "" {
		return apperr.Validation("title", "is required")
	}
	if strings.TrimSpace(n.Message) == "" {
		return apperr.Validation("message", "is required")
	}
	return nil
}
