package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afyalink/afyalink/internal/platform/access"
)

type Service struct {
	repo NotificationRepository
	log  zerolog.Logger
}

func NewService(repo NotificationRepository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Post stores a new unread notification for a user. Other stores call this
// on business events.
func (s *Service) Post(ctx context.Context, userID uuid.UUID, ntype, title, message, actionURL string) error {
	n := &Notification{
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		ActionURL: actionURL,
	}
	if err := n.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, n)
}

// MarkRead marks one notification read. Owner-only.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID, actor access.Actor) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanAccessNotification(actor, n.UserID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead marks every unread notification of the actor read. Calling it
// again is a no-op.
func (s *Service) MarkAllRead(ctx context.Context, actor access.Actor) error {
	return s.repo.MarkAllRead(ctx, actor.ID)
}

// Delete removes one notification. Owner-only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor access.Actor) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanAccessNotification(actor, n.UserID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ClearAll removes every notification of the actor.
func (s *Service) ClearAll(ctx context.Context, actor access.Actor) error {
	return s.repo.DeleteAllForUser(ctx, actor.ID)
}

// UnreadCount reports how many of the actor's notifications are unread.
func (s *Service) UnreadCount(ctx context.Context, actor access.Actor) (int, error) {
	return s.repo.UnreadCount(ctx, actor.ID)
}

// ListForUser lists the actor's notifications, newest first.
func (s *Service) ListForUser(ctx context.Context, actor access.Actor, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByUser(ctx, actor.ID, limit, offset)
}
