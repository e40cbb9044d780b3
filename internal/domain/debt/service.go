package debt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/workflow"
)

// Service keeps the hour-debt ledger. Accrual happens through RecordTx
// when a double shift is applied; settlement is a supervisor action.
type Service struct {
	store     *Store
	employees workflow.EmployeeDirectory
	notifier  workflow.Notifier
	now       func() time.Time
}

func NewService(store *Store, employees workflow.EmployeeDirectory, notifier workflow.Notifier) *Service {
	return &Service{store: store, employees: employees, notifier: notifier, now: time.Now}
}

// RecordTx satisfies the workflow's DebtRecorder.
func (s *Service) RecordTx(ctx context.Context, tx pgx.Tx, employeeID string, minutes int, requestID string) error {
	return s.store.RecordTx(ctx, tx, employeeID, minutes, requestID)
}

func (s *Service) BalanceFor(ctx context.Context, employeeID string) (Balance, error) {
	minutes, err := s.store.SumMinutes(ctx, employeeID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{EmployeeID: employeeID, Minutes: minutes, Hours: HoursFromMinutes(minutes)}, nil
}

// Balances lists every employee with an open debt, for the report view.
func (s *Service) Balances(ctx context.Context) ([]Balance, error) {
	totals, err := s.store.SumMinutesAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Balance, 0, len(totals))
	for employeeID, minutes := range totals {
		out = append(out, Balance{EmployeeID: employeeID, Minutes: minutes, Hours: HoursFromMinutes(minutes)})
	}
	return out, nil
}

func (s *Service) ListEntries(ctx context.Context, employeeID string, limit, offset int) ([]Entry, error) {
	return s.store.ListEntries(ctx, employeeID, limit, offset)
}

// Settle closes an approved double shift: a balancing ledger entry is
// written and the request moves to the settled state. Only the debtor's
// supervisor or an administrator may settle.
func (s *Service) Settle(ctx context.Context, requestID, actorEmployeeID string, actorIsAdmin bool) (Balance, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Balance{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := s.store.getDebtRequestTx(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Balance{}, &workflow.NotFoundError{Resource: "debt request", ID: requestID}
		}
		return Balance{}, err
	}
	if req.State != workflow.StateApproved || req.SettledOn != nil {
		return Balance{}, &workflow.StateConflictError{State: req.State, Message: "request has no open debt to settle"}
	}

	if !actorIsAdmin {
		isSupervisor, err := s.employees.IsSupervisorOf(ctx, actorEmployeeID, req.EmployeeID)
		if err != nil {
			return Balance{}, err
		}
		if !isSupervisor {
			return Balance{}, &workflow.PermissionError{Message: "only the supervisor may settle hour debt"}
		}
	}

	on := s.now()
	if err := s.store.RecordTx(ctx, tx, req.EmployeeID, -req.Minutes, requestID); err != nil {
		return Balance{}, err
	}
	if err := s.store.settleTx(ctx, tx, requestID, on); err != nil {
		return Balance{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Balance{}, err
	}

	if s.notifier != nil {
		body := fmt.Sprintf("Your hour debt of %s hours was settled.", HoursFromMinutes(req.Minutes))
		if err := s.notifier.Notify(ctx, req.EmployeeID, actorEmployeeID, "debt_settled", "Hour debt settled", body); err != nil {
			slog.Warn("settlement notification failed", "requestId", requestID, "err", err)
		}
	}
	return s.BalanceFor(ctx, req.EmployeeID)
}
