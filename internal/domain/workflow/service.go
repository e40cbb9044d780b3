package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/notifications"
)

// defaultDebtMinutes is charged when a debt-kind request does not name
// an explicit duration.
const defaultDebtMinutes = 30

type Service struct {
	store     StoreAPI
	registry  *Registry
	employees EmployeeDirectory
	notifier  Notifier
	now       func() time.Time
}

func NewService(store StoreAPI, registry *Registry, employees EmployeeDirectory, notifier Notifier) *Service {
	return &Service{
		store:     store,
		registry:  registry,
		employees: employees,
		notifier:  notifier,
		now:       time.Now,
	}
}

// notPendingConflict names the state blocking an operation on a
// request that is no longer pending.
func notPendingConflict(state string) *StateConflictError {
	return &StateConflictError{State: state, Message: "request " + stateClause(state)}
}

func stateClause(state string) string {
	switch state {
	case StateApproved:
		return "was already approved"
	case StateRejected:
		return "was already rejected"
	case StateCancelled:
		return "was cancelled and can no longer be decided"
	case StateSettled:
		return "was already settled"
	default:
		return "is not pending"
	}
}

// Create validates and persists a new request. A prior pending request
// by the same requester for the same date is superseded: auto-cancelled
// when nobody has approved it yet, otherwise creation is refused.
func (s *Service) Create(ctx context.Context, input CreateInput) (ChangeRequest, error) {
	strat, ok := s.registry.Get(input.Kind)
	if !ok {
		return ChangeRequest{}, &NotFoundError{Resource: "request kind", ID: string(input.Kind)}
	}
	if input.TargetDate.IsZero() {
		return ChangeRequest{}, &ValidationError{Rule: "target_date_required", Message: "target date is required"}
	}
	if input.Kind.IsDebtKind() {
		input.ReceiverID = input.RequesterID
		if input.DebtMinutes == 0 {
			input.DebtMinutes = defaultDebtMinutes
		}
	}
	if input.Kind == KindPermanentChange && input.StartDate.IsZero() {
		input.StartDate = input.TargetDate
	}

	verr, err := strat.Validate(ctx, input)
	if err != nil {
		return ChangeRequest{}, err
	}
	if verr != nil {
		return ChangeRequest{}, verr
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return ChangeRequest{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var supersededID *string
	var superseded []ChangeRequest
	priors, err := s.store.PendingByRequesterOnDateTx(ctx, tx, input.RequesterID, input.TargetDate)
	if err != nil {
		return ChangeRequest{}, err
	}
	for _, prior := range priors {
		if prior.HasAnyApproval() {
			return ChangeRequest{}, &StateConflictError{
				Message: "a pending request for that date already has an approval; cancel it explicitly first",
			}
		}
	}
	for _, prior := range priors {
		note := "superseded by a newer request for the same date"
		if err := s.store.CancelRequestTx(ctx, tx, prior.ID, note, s.now()); err != nil {
			return ChangeRequest{}, err
		}
		priorID := prior.ID
		supersededID = &priorID
		superseded = append(superseded, prior)
	}

	dup, err := s.store.HasDuplicatePendingTx(ctx, tx, input.RequesterID, input.ReceiverID, input.TargetDate)
	if err != nil {
		return ChangeRequest{}, err
	}
	if dup {
		return ChangeRequest{}, &ValidationError{
			Rule:    "no_duplicate_pending",
			Message: "an identical pending request for that date already exists",
		}
	}

	req, err := strat.Create(ctx, tx, input, supersededID)
	if err != nil {
		return ChangeRequest{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ChangeRequest{}, err
	}

	s.notifyCreated(ctx, req)
	for _, prior := range superseded {
		s.notify(ctx, prior.ReceiverID, prior.RequesterID, notifications.TypeRequestSuperseded,
			"Request superseded",
			fmt.Sprintf("The %s request for %s was replaced by a newer one.", prior.Kind, prior.TargetDate.Format("2006-01-02")))
	}
	return req, nil
}

// Approve records one party's approval. When both the receiver and the
// supervisor have approved, the request is applied to the schedule.
// Application is best effort: a failure is recorded and logged but the
// approval stands.
func (s *Service) Approve(ctx context.Context, requestID, actorEmployeeID string, actorIsAdmin bool, comment string) (DecisionResult, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return DecisionResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := s.store.GetRequestForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return DecisionResult{}, err
	}
	if req.State != StatePending {
		return DecisionResult{}, notPendingConflict(req.State)
	}

	role, err := s.decisionRole(ctx, req, actorEmployeeID, actorIsAdmin)
	if err != nil {
		return DecisionResult{}, err
	}

	decidedAt := s.now()
	if err := s.store.SetDecisionTx(ctx, tx, req.ID, role, true, decidedAt); err != nil {
		return DecisionResult{}, err
	}
	if comment != "" {
		if err := s.store.AppendCommentTx(ctx, tx, req.ID, comment); err != nil {
			return DecisionResult{}, err
		}
	}
	switch role {
	case RoleReceiver:
		req.ReceiverApproved = true
		req.ReceiverDecidedAt = &decidedAt
	case RoleSupervisor:
		req.SupervisorApproved = true
		req.SupervisorDecidedAt = &decidedAt
	}

	result := DecisionResult{Role: role}
	if req.ReceiverApproved && req.SupervisorApproved {
		result.Final = true
		req.State = StateApproved
		req.ResolvedAt = &decidedAt
		if err := s.store.SetStateTx(ctx, tx, req.ID, StateApproved, decidedAt); err != nil {
			return DecisionResult{}, err
		}

		applied, applyErr := s.applyWithinSavepoint(ctx, tx, req)
		if applyErr != nil {
			slog.Error("request application failed", "requestId", req.ID, "kind", req.Kind, "err", applyErr)
			message := "application failed: " + applyErr.Error()
			if err := s.store.SetApplyOutcomeTx(ctx, tx, req.ID, message, nil, nil); err != nil {
				return DecisionResult{}, err
			}
			req.ApplyMessage = message
		} else {
			if err := s.store.SetApplyOutcomeTx(ctx, tx, req.ID, applied.Message, applied.OriginRecordID, applied.DestinationRecordID); err != nil {
				return DecisionResult{}, err
			}
			req.ApplyMessage = applied.Message
			req.OriginRecordID = applied.OriginRecordID
			req.DestinationRecordID = applied.DestinationRecordID
			result.Apply = &applied
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return DecisionResult{}, err
	}

	result.Request = req
	s.notifyDecision(ctx, req, actorEmployeeID, role, true)
	return result, nil
}

// applyWithinSavepoint runs the strategy's Apply inside a nested
// transaction so a failed application rolls back its partial schedule
// writes without losing the committed approval.
func (s *Service) applyWithinSavepoint(ctx context.Context, tx pgx.Tx, req ChangeRequest) (ApplyResult, error) {
	strat, ok := s.registry.Get(req.Kind)
	if !ok {
		return ApplyResult{}, &NotFoundError{Resource: "request kind", ID: string(req.Kind)}
	}

	inner, err := tx.Begin(ctx)
	if err != nil {
		return ApplyResult{}, err
	}
	applied, err := strat.Apply(ctx, inner, req)
	if err != nil {
		_ = inner.Rollback(ctx)
		return ApplyResult{}, err
	}
	if err := inner.Commit(ctx); err != nil {
		return ApplyResult{}, err
	}
	return applied, nil
}

// Reject is final: either party's rejection resolves the request.
func (s *Service) Reject(ctx context.Context, requestID, actorEmployeeID string, actorIsAdmin bool, comment string) (DecisionResult, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return DecisionResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := s.store.GetRequestForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return DecisionResult{}, err
	}
	if req.State != StatePending {
		return DecisionResult{}, notPendingConflict(req.State)
	}

	role, err := s.decisionRole(ctx, req, actorEmployeeID, actorIsAdmin)
	if err != nil {
		return DecisionResult{}, err
	}

	resolvedAt := s.now()
	if err := s.store.SetDecisionTx(ctx, tx, req.ID, role, false, resolvedAt); err != nil {
		return DecisionResult{}, err
	}
	if err := s.store.SetStateTx(ctx, tx, req.ID, StateRejected, resolvedAt); err != nil {
		return DecisionResult{}, err
	}
	if comment != "" {
		if err := s.store.AppendCommentTx(ctx, tx, req.ID, comment); err != nil {
			return DecisionResult{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return DecisionResult{}, err
	}

	req.State = StateRejected
	req.ResolvedAt = &resolvedAt
	switch role {
	case RoleReceiver:
		req.ReceiverDecidedAt = &resolvedAt
	case RoleSupervisor:
		req.SupervisorDecidedAt = &resolvedAt
	}
	s.notifyDecision(ctx, req, actorEmployeeID, role, false)
	return DecisionResult{Request: req, Role: role, Final: true}, nil
}

// Cancel withdraws a pending request. Only the requester may cancel.
func (s *Service) Cancel(ctx context.Context, requestID, actorEmployeeID string) (ChangeRequest, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return ChangeRequest{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := s.store.GetRequestForUpdateTx(ctx, tx, requestID)
	if err != nil {
		return ChangeRequest{}, err
	}
	if req.RequesterID != actorEmployeeID {
		return ChangeRequest{}, &PermissionError{Message: "only the requester may cancel a request"}
	}
	if req.State != StatePending {
		conflict := notPendingConflict(req.State)
		conflict.Message = "only pending requests can be cancelled; this one " + stateClause(req.State)
		return ChangeRequest{}, conflict
	}

	resolvedAt := s.now()
	if err := s.store.SetStateTx(ctx, tx, req.ID, StateCancelled, resolvedAt); err != nil {
		return ChangeRequest{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ChangeRequest{}, err
	}

	req.State = StateCancelled
	req.ResolvedAt = &resolvedAt
	if req.ReceiverID != req.RequesterID {
		s.notify(ctx, req.ReceiverID, actorEmployeeID, notifications.TypeRequestCancelled,
			"Request cancelled",
			fmt.Sprintf("The %s request for %s was cancelled by the requester.", req.Kind, req.TargetDate.Format("2006-01-02")))
	}
	return req, nil
}

func (s *Service) Get(ctx context.Context, requestID string) (ChangeRequest, error) {
	return s.store.GetRequest(ctx, requestID)
}

func (s *Service) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]ChangeRequest, int, error) {
	return s.store.ListByRequester(ctx, requesterID, limit, offset)
}

func (s *Service) ListPendingForReceiver(ctx context.Context, receiverID string) ([]ChangeRequest, error) {
	return s.store.ListPendingForReceiver(ctx, receiverID)
}

func (s *Service) ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]ChangeRequest, error) {
	return s.store.ListPendingForSupervisor(ctx, supervisorID)
}

func (s *Service) Candidates(ctx context.Context, kind Kind, requesterID string, date time.Time) ([]core.Employee, error) {
	strat, ok := s.registry.Get(kind)
	if !ok {
		return nil, &NotFoundError{Resource: "request kind", ID: string(kind)}
	}
	return strat.Candidates(ctx, requesterID, date)
}

// decisionRole resolves which approval side the actor speaks for. The
// receiver side wins when the actor is both receiver and supervisor and
// has not yet decided as receiver.
func (s *Service) decisionRole(ctx context.Context, req ChangeRequest, actorEmployeeID string, actorIsAdmin bool) (string, error) {
	if actorEmployeeID == req.ReceiverID && !req.ReceiverApproved {
		return RoleReceiver, nil
	}
	if req.SupervisorApproved {
		if actorEmployeeID == req.ReceiverID {
			return "", &StateConflictError{Message: "receiver has already decided"}
		}
		return "", &StateConflictError{Message: "supervisor has already decided"}
	}
	if actorIsAdmin {
		return RoleSupervisor, nil
	}
	isSupervisor, err := s.employees.IsSupervisorOf(ctx, actorEmployeeID, req.RequesterID)
	if err != nil {
		return "", err
	}
	if isSupervisor {
		return RoleSupervisor, nil
	}
	if actorEmployeeID == req.ReceiverID {
		return "", &StateConflictError{Message: "receiver has already decided"}
	}
	return "", &PermissionError{Message: "only the receiver or the requester's supervisor may decide"}
}

func (s *Service) notifyCreated(ctx context.Context, req ChangeRequest) {
	date := req.TargetDate.Format("2006-01-02")
	body := fmt.Sprintf("A %s request for %s awaits your approval.", req.Kind, date)

	supervisor, err := s.employees.SupervisorOf(ctx, req.RequesterID)
	switch {
	case err != nil && !errors.Is(err, core.ErrNotFound):
		slog.Warn("supervisor lookup failed", "requestId", req.ID, "err", err)
	case err == nil && supervisor.ID == req.ReceiverID:
		s.notify(ctx, supervisor.ID, req.RequesterID, notifications.TypeRequestSubmitted,
			"Approval needed (as colleague and supervisor)", body)
	default:
		if err == nil {
			s.notify(ctx, supervisor.ID, req.RequesterID, notifications.TypeRequestSubmitted,
				"Approval needed", body)
		}
		if req.ReceiverID != req.RequesterID {
			s.notify(ctx, req.ReceiverID, req.RequesterID, notifications.TypeRequestSubmitted,
				"Approval needed", body)
		}
	}

	s.notify(ctx, req.RequesterID, req.RequesterID, notifications.TypeRequestSubmitted,
		"Request submitted",
		fmt.Sprintf("Your %s request for %s was submitted.", req.Kind, date))
}

// notifyDecision informs the requester and, while the request is still
// pending, the party that has not decided yet.
func (s *Service) notifyDecision(ctx context.Context, req ChangeRequest, actorEmployeeID, role string, approved bool) {
	date := req.TargetDate.Format("2006-01-02")
	kind := notifications.TypeRequestRejected
	verb := "rejected"
	if approved {
		kind = notifications.TypeRequestApproved
		verb = "approved"
	}

	if req.RequesterID != actorEmployeeID {
		s.notify(ctx, req.RequesterID, actorEmployeeID, kind,
			fmt.Sprintf("Request %s", verb),
			fmt.Sprintf("Your %s request for %s was %s (%s). Status: %s.", req.Kind, date, verb, role, DisplayStatus(req)))
	}

	var other string
	switch {
	case !req.ReceiverApproved && req.ReceiverID != actorEmployeeID && req.ReceiverID != req.RequesterID:
		other = req.ReceiverID
	case !req.SupervisorApproved && role == RoleReceiver:
		if supervisor, err := s.employees.SupervisorOf(ctx, req.RequesterID); err == nil && supervisor.ID != actorEmployeeID {
			other = supervisor.ID
		}
	}
	if other != "" {
		s.notify(ctx, other, actorEmployeeID, kind,
			fmt.Sprintf("Request %s by %s", verb, role),
			fmt.Sprintf("The %s request for %s was %s. Status: %s.", req.Kind, date, verb, DisplayStatus(req)))
	}
}

func (s *Service) notify(ctx context.Context, recipientID, actorID, kind, title, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, recipientID, actorID, kind, title, body); err != nil {
		slog.Warn("notification dispatch failed", "recipient", recipientID, "kind", kind, "err", err)
	}
}
