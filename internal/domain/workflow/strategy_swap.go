package workflow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/schedule"
)

// swapStrategy exchanges the shifts of two employees for one date.
type swapStrategy struct {
	deps strategyDeps
}

func (s *swapStrategy) Kind() Kind { return KindSwap }

func (s *swapStrategy) Validate(ctx context.Context, input CreateInput) (*ValidationError, error) {
	rules := s.deps.rules

	if verr := rules.NotSelfTarget(input.RequesterID, input.ReceiverID); verr != nil {
		return verr, nil
	}
	if verr := rules.NotSunday(input.TargetDate); verr != nil {
		return verr, nil
	}
	if verr, err := rules.EmployeeActive(ctx, input.RequesterID, "requester"); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.EmployeeActive(ctx, input.ReceiverID, "receiver"); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.DateNotHoliday(ctx, input.TargetDate); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.DateNotMaintenance(ctx, input.TargetDate); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.OppositeShiftRequired(ctx, input.RequesterID, input.ReceiverID, input.TargetDate); verr != nil || err != nil {
		return verr, err
	}
	return nil, nil
}

func (s *swapStrategy) Create(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error) {
	return s.deps.store.InsertRequestTx(ctx, tx, input, supersededRequestID)
}

func (s *swapStrategy) Apply(ctx context.Context, tx pgx.Tx, req ChangeRequest) (ApplyResult, error) {
	requesterShift, ok, err := s.deps.schedule.AssignedShift(ctx, req.RequesterID, req.TargetDate)
	if err != nil {
		return ApplyResult{}, err
	}
	if !ok {
		return ApplyResult{}, &ApplicationFailure{Message: "requester has no shift to swap"}
	}
	receiverShift, ok, err := s.deps.schedule.AssignedShift(ctx, req.ReceiverID, req.TargetDate)
	if err != nil {
		return ApplyResult{}, err
	}
	if !ok {
		return ApplyResult{}, &ApplicationFailure{Message: "receiver has no shift to swap"}
	}

	requesterRoom, err := s.deps.roomOfRecord(ctx, req.RequesterID, requesterShift, req.TargetDate, "requester")
	if err != nil {
		return ApplyResult{}, err
	}
	receiverRoom, err := s.deps.roomOfRecord(ctx, req.ReceiverID, receiverShift, req.TargetDate, "receiver")
	if err != nil {
		return ApplyResult{}, err
	}

	// Each side takes over the other's shift and room.
	originID, err := s.deps.writer.UpsertDayRecordTx(ctx, tx, req.RequesterID, req.TargetDate, receiverShift.ShiftTemplateID, &receiverRoom, schedule.SourceSwap)
	if err != nil {
		return ApplyResult{}, err
	}
	destinationID, err := s.deps.writer.UpsertDayRecordTx(ctx, tx, req.ReceiverID, req.TargetDate, requesterShift.ShiftTemplateID, &requesterRoom, schedule.SourceSwap)
	if err != nil {
		return ApplyResult{}, err
	}

	return ApplyResult{
		DaysApplied:         1,
		OriginRecordID:      &originID,
		DestinationRecordID: &destinationID,
		Message:             "shift swap applied",
	}, nil
}

func (s *swapStrategy) Candidates(ctx context.Context, requesterID string, date time.Time) ([]core.Employee, error) {
	return s.deps.schedule.OppositeShiftEmployees(ctx, requesterID, date)
}
