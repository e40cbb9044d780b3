package workflow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/schedule"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	InsertRequestTx(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error)
	InsertPermanentDetailTx(ctx context.Context, tx pgx.Tx, requestID string, start time.Time, end *time.Time) error
	InsertDebtDetailTx(ctx context.Context, tx pgx.Tx, requestID string, minutes int) error
	GetRequest(ctx context.Context, requestID string) (ChangeRequest, error)
	GetRequestForUpdateTx(ctx context.Context, tx pgx.Tx, requestID string) (ChangeRequest, error)
	PendingByRequesterOnDateTx(ctx context.Context, tx pgx.Tx, requesterID string, date time.Time) ([]ChangeRequest, error)
	CancelRequestTx(ctx context.Context, tx pgx.Tx, requestID, note string, resolvedAt time.Time) error
	SetDecisionTx(ctx context.Context, tx pgx.Tx, requestID, role string, approved bool, decidedAt time.Time) error
	SetStateTx(ctx context.Context, tx pgx.Tx, requestID, state string, resolvedAt time.Time) error
	AppendCommentTx(ctx context.Context, tx pgx.Tx, requestID, note string) error
	SetApplyOutcomeTx(ctx context.Context, tx pgx.Tx, requestID, message string, originRecordID, destinationRecordID *string) error
	HasDuplicatePendingTx(ctx context.Context, tx pgx.Tx, requesterID, receiverID string, date time.Time) (bool, error)
	HasOverlappingPermanentChange(ctx context.Context, requesterID, receiverID string, start, end time.Time) (bool, error)
	ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]ChangeRequest, int, error)
	ListPendingForReceiver(ctx context.Context, receiverID string) ([]ChangeRequest, error)
	ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]ChangeRequest, error)
}

// ScheduleAPI is the read side of the schedule the workflow consults.
type ScheduleAPI interface {
	AssignedShift(ctx context.Context, employeeID string, date time.Time) (schedule.ShiftInfo, bool, error)
	OppositeShiftEmployees(ctx context.Context, employeeID string, date time.Time) ([]core.Employee, error)
	SpecialDayKind(ctx context.Context, date time.Time) (string, bool, error)
	RoomOfRecord(ctx context.Context, employeeID string, date time.Time) (string, bool, error)
}

// ScheduleWriter is the transactional write side strategies apply
// approved changes through.
type ScheduleWriter interface {
	UpsertDayRecordTx(ctx context.Context, tx pgx.Tx, employeeID string, date time.Time, shiftTemplateID string, roomID *string, changeKind string) (string, error)
	TrimStandingAssignmentsTx(ctx context.Context, tx pgx.Tx, employeeID string, cutoff time.Time) (int64, error)
	InsertStandingAssignmentTx(ctx context.Context, tx pgx.Tx, employeeID, shiftTemplateID string, start time.Time, end *time.Time) (string, error)
}

type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	ListEmployees(ctx context.Context, activeOnly bool, limit, offset int) ([]core.Employee, error)
	IsSupervisorOf(ctx context.Context, supervisorEmployeeID, employeeID string) (bool, error)
	SupervisorOf(ctx context.Context, employeeID string) (core.Employee, error)
}

type DebtRecorder interface {
	RecordTx(ctx context.Context, tx pgx.Tx, employeeID string, minutes int, requestID string) error
}

// Notifier delivers a notification on behalf of the acting employee.
// Implementations must not fail the workflow; errors are for logging.
type Notifier interface {
	Notify(ctx context.Context, recipientEmployeeID, actorEmployeeID, kind, title, body string) error
}
