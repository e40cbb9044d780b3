package notifications

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, n Notification) (Notification, error)
	List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, int, error)
	UnreadCount(ctx context.Context, employeeID string) (int, error)
	MarkRead(ctx context.Context, employeeID, notificationID string) (bool, error)
	MarkAllRead(ctx context.Context, employeeID string) (int64, error)
}
