package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/schedule"
)

// permanentChangeStrategy swaps two employees' shifts over a date range.
// Unlike single-date kinds, Sundays and holidays inside the range do not
// invalidate the request; they are skipped during application and
// reported back.
type permanentChangeStrategy struct {
	deps strategyDeps
}

func (s *permanentChangeStrategy) Kind() Kind { return KindPermanentChange }

func (s *permanentChangeStrategy) Validate(ctx context.Context, input CreateInput) (*ValidationError, error) {
	rules := s.deps.rules

	if verr := rules.NotSelfTarget(input.RequesterID, input.ReceiverID); verr != nil {
		return verr, nil
	}
	start := schedule.DateOnly(input.StartDate)
	if start.IsZero() {
		return violation("valid_range", "start date is required"), nil
	}
	if input.EndDate != nil && input.EndDate.Before(start) {
		return violation("valid_range", "end date must not precede start date"), nil
	}
	if verr := rules.StartDateNotPast(start); verr != nil {
		return verr, nil
	}
	if verr, err := rules.EmployeeActive(ctx, input.RequesterID, "requester"); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.EmployeeActive(ctx, input.ReceiverID, "receiver"); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.DateNotMaintenance(ctx, start); verr != nil || err != nil {
		return verr, err
	}
	if input.EndDate != nil {
		if verr, err := rules.DateNotMaintenance(ctx, schedule.DateOnly(*input.EndDate)); verr != nil || err != nil {
			return verr, err
		}
	}
	if verr, err := rules.OppositeShiftRequired(ctx, input.RequesterID, input.ReceiverID, start); verr != nil || err != nil {
		return verr, err
	}
	if verr, err := rules.NoOverlappingPermanentChange(ctx, input.RequesterID, input.ReceiverID, start, input.EndDate); verr != nil || err != nil {
		return verr, err
	}
	return nil, nil
}

func (s *permanentChangeStrategy) Create(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error) {
	req, err := s.deps.store.InsertRequestTx(ctx, tx, input, supersededRequestID)
	if err != nil {
		return ChangeRequest{}, err
	}

	start := schedule.DateOnly(input.StartDate)
	end := schedule.EndOfYear(start)
	if input.EndDate != nil {
		end = schedule.DateOnly(*input.EndDate)
	}
	if err := s.deps.store.InsertPermanentDetailTx(ctx, tx, req.ID, start, &end); err != nil {
		return ChangeRequest{}, err
	}
	req.Permanent = &PermanentChangeDetail{StartDate: start, EndDate: &end}
	return req, nil
}

func (s *permanentChangeStrategy) Apply(ctx context.Context, tx pgx.Tx, req ChangeRequest) (ApplyResult, error) {
	if req.Permanent == nil {
		return ApplyResult{}, &ApplicationFailure{Message: "request has no permanent change detail"}
	}
	start := schedule.DateOnly(req.Permanent.StartDate)
	end := schedule.EndOfYear(start)
	if req.Permanent.EndDate != nil {
		end = schedule.DateOnly(*req.Permanent.EndDate)
	}

	requesterShift, ok, err := s.deps.schedule.AssignedShift(ctx, req.RequesterID, start)
	if err != nil {
		return ApplyResult{}, err
	}
	if !ok {
		return ApplyResult{}, &ApplicationFailure{Message: "requester has no shift at range start"}
	}
	receiverShift, ok, err := s.deps.schedule.AssignedShift(ctx, req.ReceiverID, start)
	if err != nil {
		return ApplyResult{}, err
	}
	if !ok {
		return ApplyResult{}, &ApplicationFailure{Message: "receiver has no shift at range start"}
	}

	// Shifts are exchanged for the whole range but each employee keeps
	// working in their own room.
	requesterRoom, err := s.deps.roomOfRecord(ctx, req.RequesterID, requesterShift, start, "requester")
	if err != nil {
		return ApplyResult{}, err
	}
	receiverRoom, err := s.deps.roomOfRecord(ctx, req.ReceiverID, receiverShift, start, "receiver")
	if err != nil {
		return ApplyResult{}, err
	}

	result := ApplyResult{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if reason, skip, err := s.skipReason(ctx, day); err != nil {
			return ApplyResult{}, err
		} else if skip {
			result.Skipped = append(result.Skipped, SkippedDay{Date: day, Reason: reason})
			continue
		}

		originID, err := s.deps.writer.UpsertDayRecordTx(ctx, tx, req.RequesterID, day, receiverShift.ShiftTemplateID, &requesterRoom, schedule.SourcePermanent)
		if err != nil {
			return ApplyResult{}, err
		}
		destinationID, err := s.deps.writer.UpsertDayRecordTx(ctx, tx, req.ReceiverID, day, requesterShift.ShiftTemplateID, &receiverRoom, schedule.SourcePermanent)
		if err != nil {
			return ApplyResult{}, err
		}
		if result.OriginRecordID == nil {
			result.OriginRecordID = &originID
			result.DestinationRecordID = &destinationID
		}
		result.DaysApplied++
	}

	// Standing assignments stop at the range start and resume with the
	// original template the day after the range ends.
	for _, pair := range []struct {
		employeeID string
		templateID string
	}{
		{req.RequesterID, requesterShift.ShiftTemplateID},
		{req.ReceiverID, receiverShift.ShiftTemplateID},
	} {
		if _, err := s.deps.writer.TrimStandingAssignmentsTx(ctx, tx, pair.employeeID, start); err != nil {
			return ApplyResult{}, err
		}
		if _, err := s.deps.writer.InsertStandingAssignmentTx(ctx, tx, pair.employeeID, pair.templateID, end.AddDate(0, 0, 1), nil); err != nil {
			return ApplyResult{}, err
		}
	}

	result.Message = fmt.Sprintf("applied %d days, skipped %d", result.DaysApplied, len(result.Skipped))
	return result, nil
}

func (s *permanentChangeStrategy) skipReason(ctx context.Context, day time.Time) (string, bool, error) {
	if schedule.IsSunday(day) {
		return "Sunday", true, nil
	}
	kind, ok, err := s.deps.schedule.SpecialDayKind(ctx, day)
	if err != nil {
		return "", false, err
	}
	if ok {
		switch kind {
		case schedule.SpecialDayHoliday:
			return "holiday", true, nil
		case schedule.SpecialDayMaintenance:
			return "maintenance day", true, nil
		}
	}
	return "", false, nil
}

func (s *permanentChangeStrategy) Candidates(ctx context.Context, requesterID string, date time.Time) ([]core.Employee, error) {
	return s.deps.schedule.OppositeShiftEmployees(ctx, requesterID, date)
}
