package debt

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("debt request not found")

// debtRequest is the settlement view of an approved double shift.
type debtRequest struct {
	RequestID  string
	EmployeeID string
	State      string
	Minutes    int
	SettledOn  *time.Time
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) RecordTx(ctx context.Context, tx pgx.Tx, employeeID string, minutes int, requestID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO debt_entries (employee_id, request_id, minutes)
		VALUES ($1, $2, $3)`,
		employeeID, requestID, minutes,
	)
	return err
}

func (s *Store) SumMinutes(ctx context.Context, employeeID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(minutes), 0) FROM debt_entries WHERE employee_id = $1`,
		employeeID,
	).Scan(&total)
	return total, err
}

func (s *Store) SumMinutesAll(ctx context.Context) (map[string]int, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT employee_id, COALESCE(SUM(minutes), 0)
		FROM debt_entries
		GROUP BY employee_id
		HAVING COALESCE(SUM(minutes), 0) <> 0
		ORDER BY employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[string]int{}
	for rows.Next() {
		var employeeID string
		var minutes int
		if err := rows.Scan(&employeeID, &minutes); err != nil {
			return nil, err
		}
		totals[employeeID] = minutes
	}
	return totals, rows.Err()
}

func (s *Store) ListEntries(ctx context.Context, employeeID string, limit, offset int) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, employee_id, request_id, minutes, created_at
		FROM debt_entries
		WHERE employee_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		employeeID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.RequestID, &e.Minutes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) getDebtRequestTx(ctx context.Context, tx pgx.Tx, requestID string) (debtRequest, error) {
	var req debtRequest
	err := tx.QueryRow(ctx, `
		SELECT cr.id, cr.requester_id, cr.state, dsd.debt_minutes, dsd.settled_on
		FROM change_requests cr
		JOIN double_shift_details dsd ON dsd.request_id = cr.id
		WHERE cr.id = $1
		FOR UPDATE OF cr, dsd`,
		requestID,
	).Scan(&req.RequestID, &req.EmployeeID, &req.State, &req.Minutes, &req.SettledOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return debtRequest{}, ErrNotFound
	}
	return req, err
}

func (s *Store) settleTx(ctx context.Context, tx pgx.Tx, requestID string, on time.Time) error {
	if _, err := tx.Exec(ctx, `
		UPDATE double_shift_details SET settled_on = $2 WHERE request_id = $1`,
		requestID, on,
	); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE change_requests SET state = $2, resolved_at = $3 WHERE id = $1`,
		requestID, "settled", on,
	)
	return err
}
