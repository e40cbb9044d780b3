package workflow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
)

// weekendDoubleStrategy is the weekend variant of the extra shift: the
// employee doubles on a Saturday or Sunday and accrues hour debt.
type weekendDoubleStrategy struct {
	deps strategyDeps
}

func (s *weekendDoubleStrategy) Kind() Kind { return KindWeekendDouble }

func (s *weekendDoubleStrategy) Validate(ctx context.Context, input CreateInput) (*ValidationError, error) {
	rules := s.deps.rules

	if verr := rules.WeekendOnly(input.TargetDate); verr != nil {
		return verr, nil
	}
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

func (s *weekendDoubleStrategy) Create(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error) {
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

func (s *weekendDoubleStrategy) Apply(ctx context.Context, tx pgx.Tx, req ChangeRequest) (ApplyResult, error) {
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

func (s *weekendDoubleStrategy) Candidates(ctx context.Context, requesterID string, date time.Time) ([]core.Employee, error) {
	return s.deps.employees.ListEmployees(ctx, true, 1000, 0)
}
