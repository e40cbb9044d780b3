package workflow

import (
	"context"
	"errors"
	"time"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/schedule"
)

// Rules holds the reusable request checks. Each check returns a
// *ValidationError when the rule is violated (nil when it passes) and a
// plain error only for infrastructure faults.
type Rules struct {
	Schedule  ScheduleAPI
	Employees EmployeeDirectory
	Requests  StoreAPI
	Now       func() time.Time
}

func NewRules(scheduleAPI ScheduleAPI, employees EmployeeDirectory, requests StoreAPI) *Rules {
	return &Rules{Schedule: scheduleAPI, Employees: employees, Requests: requests, Now: time.Now}
}

func violation(rule, message string) *ValidationError {
	return &ValidationError{Rule: rule, Message: message}
}

func (r *Rules) EmployeeActive(ctx context.Context, employeeID, field string) (*ValidationError, error) {
	employee, err := r.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return violation("employee_active", field+" does not exist"), nil
		}
		return nil, err
	}
	if !employee.Active {
		return violation("employee_active", field+" is not active"), nil
	}
	return nil, nil
}

func (r *Rules) NotSelfTarget(requesterID, receiverID string) *ValidationError {
	if requesterID == receiverID {
		return violation("not_self_target", "requester and receiver must be different employees")
	}
	return nil
}

// HasShiftOnDate verifies the employee has a resolvable shift and
// returns it for subsequent checks.
func (r *Rules) HasShiftOnDate(ctx context.Context, employeeID string, date time.Time, field string) (schedule.ShiftInfo, *ValidationError, error) {
	info, ok, err := r.Schedule.AssignedShift(ctx, employeeID, date)
	if err != nil {
		return schedule.ShiftInfo{}, nil, err
	}
	if !ok {
		return schedule.ShiftInfo{}, violation("has_shift_on_date", field+" has no shift on the requested date"), nil
	}
	return info, nil, nil
}

func (r *Rules) StartDateNotPast(start time.Time) *ValidationError {
	today := schedule.DateOnly(r.Now())
	if start.Before(today) {
		return violation("start_date_not_past", "start date cannot be in the past")
	}
	return nil
}

func (r *Rules) OppositeShiftRequired(ctx context.Context, requesterID, receiverID string, date time.Time) (*ValidationError, error) {
	requester, verr, err := r.HasShiftOnDate(ctx, requesterID, date, "requester")
	if verr != nil || err != nil {
		return verr, err
	}
	receiver, verr, err := r.HasShiftOnDate(ctx, receiverID, date, "receiver")
	if verr != nil || err != nil {
		return verr, err
	}
	opposite, ok := schedule.OppositeShiftName(requester.ShiftName)
	if !ok {
		return violation("opposite_shift_required", "requester shift has no opposite"), nil
	}
	if receiver.ShiftName != opposite {
		return violation("opposite_shift_required", "receiver must work the opposite shift"), nil
	}
	return nil, nil
}

func (r *Rules) DateNotMaintenance(ctx context.Context, date time.Time) (*ValidationError, error) {
	kind, ok, err := r.Schedule.SpecialDayKind(ctx, date)
	if err != nil {
		return nil, err
	}
	if ok && kind == schedule.SpecialDayMaintenance {
		return violation("date_not_maintenance", "the requested date is a maintenance day"), nil
	}
	return nil, nil
}

func (r *Rules) DateNotHoliday(ctx context.Context, date time.Time) (*ValidationError, error) {
	kind, ok, err := r.Schedule.SpecialDayKind(ctx, date)
	if err != nil {
		return nil, err
	}
	if ok && kind == schedule.SpecialDayHoliday {
		return violation("date_not_holiday", "the requested date is a holiday"), nil
	}
	return nil, nil
}

func (r *Rules) NotSunday(date time.Time) *ValidationError {
	if schedule.IsSunday(date) {
		return violation("not_sunday", "shift changes cannot target a Sunday")
	}
	return nil
}

func (r *Rules) WeekendOnly(date time.Time) *ValidationError {
	if !schedule.IsWeekend(date) {
		return violation("weekend_only", "the requested date must fall on a weekend")
	}
	return nil
}

func (r *Rules) PositiveDebtMinutes(minutes int) *ValidationError {
	if minutes <= 0 {
		return violation("positive_debt_minutes", "debt minutes must be positive")
	}
	return nil
}

// NoOverlappingPermanentChange rejects ranges that intersect a pending
// or approved permanent change between the same two employees, in
// either direction. Open-ended ranges count as extending indefinitely.
func (r *Rules) NoOverlappingPermanentChange(ctx context.Context, requesterID, receiverID string, start time.Time, end *time.Time) (*ValidationError, error) {
	effectiveEnd := schedule.EndOfYear(start)
	if end != nil {
		effectiveEnd = *end
	}
	exists, err := r.Requests.HasOverlappingPermanentChange(ctx, requesterID, receiverID, start, effectiveEnd)
	if err != nil {
		return nil, err
	}
	if exists {
		return violation("no_overlapping_permanent_change", "an overlapping permanent change with this colleague already exists"), nil
	}
	return nil, nil
}
