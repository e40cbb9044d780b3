package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"shiftswap/internal/domain/core"
)

// Mailer sends a plain-text email. Implementations live in
// internal/platform/email.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Directory resolves employee addresses for email delivery.
type Directory interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

type Service struct {
	store     StoreAPI
	directory Directory
	mailer    Mailer
	from      string
}

func NewService(store StoreAPI, directory Directory, mailer Mailer, from string) *Service {
	return &Service{store: store, directory: directory, mailer: mailer, from: from}
}

// Notify stores an in-app notification and emails the recipient. Email
// delivery failures are logged, never propagated; the stored row is the
// source of truth.
func (s *Service) Notify(ctx context.Context, recipientEmployeeID, actorEmployeeID, kind, title, body string) error {
	n, err := s.store.Insert(ctx, Notification{
		EmployeeID:      recipientEmployeeID,
		ActorEmployeeID: actorEmployeeID,
		Kind:            kind,
		Title:           title,
		Body:            body,
	})
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	recipient, err := s.directory.GetEmployee(ctx, recipientEmployeeID)
	if err != nil {
		slog.Warn("notification email skipped, recipient lookup failed", "notificationId", n.ID, "err", err)
		return nil
	}
	if err := s.mailer.Send(ctx, s.from, recipient.Email, title, body); err != nil {
		slog.Warn("notification email failed", "notificationId", n.ID, "to", recipient.Email, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	return s.store.List(ctx, employeeID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	return s.store.UnreadCount(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, employeeID, notificationID string) (bool, error) {
	return s.store.MarkRead(ctx, employeeID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, employeeID string) (int64, error) {
	return s.store.MarkAllRead(ctx, employeeID)
}
