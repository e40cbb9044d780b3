package workflow

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/schedule"
)

// Strategy implements the kind-specific behavior of a change request.
type Strategy interface {
	Kind() Kind
	Validate(ctx context.Context, input CreateInput) (*ValidationError, error)
	Create(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error)
	Apply(ctx context.Context, tx pgx.Tx, req ChangeRequest) (ApplyResult, error)
	Candidates(ctx context.Context, requesterID string, date time.Time) ([]core.Employee, error)
}

type strategyDeps struct {
	rules     *Rules
	store     StoreAPI
	schedule  ScheduleAPI
	writer    ScheduleWriter
	employees EmployeeDirectory
	debt      DebtRecorder
}

// roomOfRecord resolves the room a schedule write for the employee must
// carry. A room already pinned on the shift wins, then the room
// assignment in force on the date, then the first competency room.
// Application cannot proceed without one.
func (d strategyDeps) roomOfRecord(ctx context.Context, employeeID string, info schedule.ShiftInfo, date time.Time, field string) (string, error) {
	if info.RoomID != nil && *info.RoomID != "" {
		return *info.RoomID, nil
	}
	roomID, ok, err := d.schedule.RoomOfRecord(ctx, employeeID, date)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ApplicationFailure{Message: field + " has no room of record"}
	}
	return roomID, nil
}

// Registry holds the closed set of strategies. It is built once at
// construction and injected into the service; there is no runtime
// registration.
type Registry struct {
	strategies map[Kind]Strategy
}

func NewRegistry(rules *Rules, store StoreAPI, scheduleAPI ScheduleAPI, writer ScheduleWriter, employees EmployeeDirectory, debt DebtRecorder) *Registry {
	deps := strategyDeps{
		rules:     rules,
		store:     store,
		schedule:  scheduleAPI,
		writer:    writer,
		employees: employees,
		debt:      debt,
	}
	return &Registry{strategies: map[Kind]Strategy{
		KindSwap:            &swapStrategy{deps},
		KindExtraShift:      &extraShiftStrategy{deps},
		KindPermanentChange: &permanentChangeStrategy{deps},
		KindWeekendDouble:   &weekendDoubleStrategy{deps},
	}}
}

func (r *Registry) Get(kind Kind) (Strategy, bool) {
	strat, ok := r.strategies[kind]
	return strat, ok
}

func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.strategies))
	for kind := range r.strategies {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
