package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Insert(ctx context.Context, n Notification) (Notification, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO notifications (employee_id, actor_employee_id, kind, title, body)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)
		RETURNING id, created_at`,
		n.EmployeeID, n.ActorEmployeeID, n.Kind, n.Title, n.Body,
	)
	if err := row.Scan(&n.ID, &n.CreatedAt); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func (s *Store) List(ctx context.Context, employeeID string, unreadOnly bool, limit, offset int) ([]Notification, int, error) {
	filter := ``
	if unreadOnly {
		filter = ` AND read_at IS NULL`
	}

	var total int
	if err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE employee_id = $1`+filter,
		employeeID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT id, employee_id, COALESCE(actor_employee_id::text, ''), kind, title, body, read_at, created_at
		FROM notifications
		WHERE employee_id = $1`+filter+`
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		employeeID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.ActorEmployeeID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE employee_id = $1 AND read_at IS NULL`,
		employeeID,
	).Scan(&count)
	return count, err
}

func (s *Store) MarkRead(ctx context.Context, employeeID, notificationID string) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE id = $1 AND employee_id = $2 AND read_at IS NULL`,
		notificationID, employeeID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkAllRead(ctx context.Context, employeeID string) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE employee_id = $1 AND read_at IS NULL`,
		employeeID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
