package workflow

import "time"

type Kind string

const (
	KindSwap            Kind = "swap"
	KindExtraShift      Kind = "extra_shift"
	KindPermanentChange Kind = "permanent_change"
	KindWeekendDouble   Kind = "weekend_double"
)

func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindSwap, KindExtraShift, KindPermanentChange, KindWeekendDouble:
		return Kind(value), true
	}
	return "", false
}

// IsDebtKind reports whether the kind accrues hour debt instead of
// moving schedule records.
func (k Kind) IsDebtKind() bool {
	return k == KindExtraShift || k == KindWeekendDouble
}

const (
	StatePending   = "pending"
	StateApproved  = "approved"
	StateRejected  = "rejected"
	StateCancelled = "cancelled"
	StateSettled   = "settled"
)

const (
	RoleReceiver   = "receiver"
	RoleSupervisor = "supervisor"
)

type ChangeRequest struct {
	ID                  string     `json:"id"`
	Kind                Kind       `json:"kind"`
	RequesterID         string     `json:"requesterId"`
	ReceiverID          string     `json:"receiverId"`
	TargetDate          time.Time  `json:"targetDate"`
	State               string     `json:"state"`
	ReceiverApproved    bool       `json:"receiverApproved"`
	ReceiverDecidedAt   *time.Time `json:"receiverDecidedAt,omitempty"`
	SupervisorApproved  bool       `json:"supervisorApproved"`
	SupervisorDecidedAt *time.Time `json:"supervisorDecidedAt,omitempty"`
	Comment             string     `json:"comment,omitempty"`
	SupersededRequestID *string    `json:"supersededRequestId,omitempty"`
	OriginRecordID      *string    `json:"originRecordId,omitempty"`
	DestinationRecordID *string    `json:"destinationRecordId,omitempty"`
	ApplyMessage        string     `json:"applyMessage,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	ResolvedAt          *time.Time `json:"resolvedAt,omitempty"`

	Permanent *PermanentChangeDetail `json:"permanent,omitempty"`
	Debt      *DoubleShiftDetail     `json:"debt,omitempty"`
}

// HasAnyApproval reports whether either party has already approved.
func (r *ChangeRequest) HasAnyApproval() bool {
	return r.ReceiverApproved || r.SupervisorApproved
}

type PermanentChangeDetail struct {
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

type DoubleShiftDetail struct {
	DebtMinutes int        `json:"debtMinutes"`
	SettledOn   *time.Time `json:"settledOn,omitempty"`
}

// CreateInput carries everything a strategy needs to validate and
// persist a new request.
type CreateInput struct {
	Kind        Kind
	RequesterID string
	ReceiverID  string
	TargetDate  time.Time
	Comment     string

	// Permanent change only.
	StartDate time.Time
	EndDate   *time.Time

	// Debt kinds only.
	DebtMinutes int
}

type SkippedDay struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

// ApplyResult summarizes what an approved request changed.
type ApplyResult struct {
	DaysApplied         int          `json:"daysApplied"`
	Skipped             []SkippedDay `json:"skipped,omitempty"`
	OriginRecordID      *string      `json:"originRecordId,omitempty"`
	DestinationRecordID *string      `json:"destinationRecordId,omitempty"`
	Message             string       `json:"message,omitempty"`
}

// DecisionResult reports the outcome of an approve or reject call.
type DecisionResult struct {
	Request ChangeRequest `json:"request"`
	Role    string        `json:"role"`
	Final   bool          `json:"final"`
	Apply   *ApplyResult  `json:"apply,omitempty"`
}
