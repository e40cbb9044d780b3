package workflow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
)

// extraShiftStrategy lets an employee work an additional shift on a
// weekday in exchange for hour debt. The request is self-directed: the
// receiver is the requester.
type extraShiftStrategy struct {
	deps strategyDeps
}

func (s *extraShiftStrategy) Kind() Kind { return KindExtraShift }

func (s *extraShiftStrategy) Validate(ctx context.Context, input CreateInput) (*ValidationError, error) {
	rules := s.deps.rules

	if verr := rules.PositiveDebtMinutes(input.DebtMinutes); verr != nil {
		return verr, nil
	}
	if verr, err := rules.EmployeeActive(ctx, input.RequesterID, "requester"); verr != nil || err != nil {
		return verr, err
	}
	if _, verr, err := rules.HasShiftOnDate(ctx, input.RequesterID, input.TargetDate, "requester"); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.DateNotMaintenance(ctx, input.TargetDate); verr != nil || err != nil {
		return verr, err
	}
	return nil, nil
}

func (s *extraShiftStrategy) Create(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error) {
	req, err := s.deps.store.InsertRequestTx(ctx, tx, input, supersededRequestID)
	if err != nil {
		return ChangeRequest{}, err
	}
	if err := s.deps.store.InsertDebtDetailTx(ctx, tx, req.ID, input.DebtMinutes); err != nil {
		return ChangeRequest{}, err
	}
	req.Debt = &DoubleShiftDetail{DebtMinutes: input.DebtMinutes}
	return req, nil
}

func (s *extraShiftStrategy) Apply(ctx context.Context, tx pgx.Tx, req ChangeRequest) (ApplyResult, error) {
	minutes := 0
	if req.Debt != nil {
		minutes = req.Debt.DebtMinutes
	}
	if minutes <= 0 {
		return ApplyResult{}, &ApplicationFailure{Message: "request has no debt minutes recorded"}
	}
	if err := s.deps.debt.RecordTx(ctx, tx, req.RequesterID, minutes, req.ID); err != nil {
		return ApplyResult{}, err
	}
	return ApplyResult{DaysApplied: 1, Message: "hour debt recorded"}, nil
}

// Candidates lists every active employee: a double can cover any
// colleague's shift, including the requester's own.
func (s *extraShiftStrategy) Candidates(ctx context.Context, requesterID string, date time.Time) ([]core.Employee, error) {
	return s.deps.employees.ListEmployees(ctx, true, 1000, 0)
}
