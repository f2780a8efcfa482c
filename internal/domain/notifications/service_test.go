package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/afyalink/afyalink/internal/platform/access"
	"github.com/afyalink/afyalink/internal/platform/apperr"
)

type mockNotifRepo struct {
	notifs map[uuid.UUID]*Notification
}

func newMockNotifRepo() *mockNotifRepo {
	return &mockNotifRepo{notifs: make(map[uuid.UUID]*Notification)}
}

func (m *mockNotifRepo) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	cp := *n
	m.notifs[n.ID] = &cp
	return nil
}

func (m *mockNotifRepo) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := m.notifs[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockNotifRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	n, ok := m.notifs[id]
	if !ok {
		return apperr.ErrNotFound
	}
	n.Read = true
	return nil
}

func (m *mockNotifRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	for _, n := range m.notifs {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (m *mockNotifRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.notifs[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.notifs, id)
	return nil
}

func (m *mockNotifRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	for id, n := range m.notifs {
		if n.UserID == userID {
			delete(m.notifs, id)
		}
	}
	return nil
}

func (m *mockNotifRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.notifs {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *mockNotifRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var out []*Notification
	for _, n := range m.notifs {
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockNotifRepo) {
	repo := newMockNotifRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func post(t *testing.T, svc *Service, userID uuid.UUID) {
	t.Helper()
	if err := svc.Post(context.Background(), userID, TypeSystem, "Hello", "A message for you.", ""); err != nil {
		t.Fatal(err)
	}
}

func ownerOf(repo *mockNotifRepo, userID uuid.UUID) uuid.UUID {
	for id, n := range repo.notifs {
		if n.UserID == userID {
			return id
		}
	}
	return uuid.Nil
}

func TestPost_StartsUnread(t *testing.T) {
	svc, repo := newTestService()
	owner := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	post(t, svc, owner.ID)

	n, err := repo.GetByID(context.Background(), ownerOf(repo, owner.ID))
	if err != nil {
		t.Fatal(err)
	}
	if n.Read {
		t.Error("new notification must start unread")
	}
}

func TestPost_InvalidType(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Post(context.Background(), uuid.New(), "marketing", "Hi", "msg", "")
	if !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestMarkRead_OwnerOnly(t *testing.T) {
	svc, repo := newTestService()
	owner := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	stranger := access.Actor{ID: uuid.New(), Role: access.RoleDoctor}
	post(t, svc, owner.ID)
	id := ownerOf(repo, owner.ID)

	if err := svc.MarkRead(context.Background(), id, stranger); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if err := svc.MarkRead(context.Background(), id, owner); err != nil {
		t.Fatal(err)
	}
	n, _ := repo.GetByID(context.Background(), id)
	if !n.Read {
		t.Error("notification not marked read")
	}
}

func TestMarkAllRead_IdempotentAndScoped(t *testing.T) {
	svc, _ := newTestService()
	owner := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	other := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	post(t, svc, owner.ID)
	post(t, svc, owner.ID)
	post(t, svc, other.ID)

	if err := svc.MarkAllRead(context.Background(), owner); err != nil {
		t.Fatal(err)
	}
	count, err := svc.UnreadCount(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unread = %d, want 0", count)
	}

	// Second call changes nothing.
	if err := svc.MarkAllRead(context.Background(), owner); err != nil {
		t.Fatal(err)
	}
	count, _ = svc.UnreadCount(context.Background(), owner)
	if count != 0 {
		t.Errorf("unread after second call = %d, want 0", count)
	}

	// The other user's notifications are untouched.
	otherCount, _ := svc.UnreadCount(context.Background(), other)
	if otherCount != 1 {
		t.Errorf("other user's unread = %d, want 1", otherCount)
	}
}

func TestUnreadCount_Exact(t *testing.T) {
	svc, repo := newTestService()
	owner := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	post(t, svc, owner.ID)
	post(t, svc, owner.ID)
	post(t, svc, owner.ID)

	if err := svc.MarkRead(context.Background(), ownerOf(repo, owner.ID), owner); err != nil {
		t.Fatal(err)
	}
	count, err := svc.UnreadCount(context.Background(), owner)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, repo := newTestService()
	owner := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	stranger := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	post(t, svc, owner.ID)
	id := ownerOf(repo, owner.ID)

	if err := svc.Delete(context.Background(), id, stranger); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), id, owner); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), id, owner); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestClearAll_ScopedToActor(t *testing.T) {
	svc, _ := newTestService()
	owner := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	other := access.Actor{ID: uuid.New(), Role: access.RolePatient}
	post(t, svc, owner.ID)
	post(t, svc, other.ID)

	if err := svc.ClearAll(context.Background(), owner); err != nil {
		t.Fatal(err)
	}
	mine, _, err := svc.ListForUser(context.Background(), owner, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 0 {
		t.Errorf("owner still sees %d", len(mine))
	}
	theirs, _, _ := svc.ListForUser(context.Background(), other, 20, 0)
	if len(theirs) != 1 {
		t.Error("other user's notifications were cleared")
	}
}
