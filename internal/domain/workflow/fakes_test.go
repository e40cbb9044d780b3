package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"shiftswap/internal/domain/core"
	"shiftswap/internal/domain/schedule"
)

// fakeTx satisfies pgx.Tx for the handful of methods the service uses.
// The embedded interface is nil, so any unexpected call panics loudly.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	children   []*fakeTx
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) {
	child := &fakeTx{}
	t.children = append(t.children, child)
	return child, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeStore struct {
	requests map[string]*ChangeRequest
	nextID   int
	lastTx   *fakeTx

	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{requests: map[string]*ChangeRequest{}}
}

func (s *fakeStore) add(req ChangeRequest) *ChangeRequest {
	if req.ID == "" {
		s.nextID++
		req.ID = fmt.Sprintf("req-%d", s.nextID)
	}
	stored := req
	s.requests[stored.ID] = &stored
	return &stored
}

func (s *fakeStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	s.lastTx = &fakeTx{}
	return s.lastTx, nil
}

func (s *fakeStore) InsertRequestTx(ctx context.Context, tx pgx.Tx, input CreateInput, supersededRequestID *string) (ChangeRequest, error) {
	if s.insertErr != nil {
		return ChangeRequest{}, s.insertErr
	}
	s.nextID++
	req := ChangeRequest{
		ID:                  fmt.Sprintf("req-%d", s.nextID),
		Kind:                input.Kind,
		RequesterID:         input.RequesterID,
		ReceiverID:          input.ReceiverID,
		TargetDate:          input.TargetDate,
		Comment:             input.Comment,
		State:               StatePending,
		SupersededRequestID: supersededRequestID,
		CreatedAt:           time.Now(),
	}
	s.requests[req.ID] = &req
	return req, nil
}

func (s *fakeStore) InsertPermanentDetailTx(ctx context.Context, tx pgx.Tx, requestID string, start time.Time, end *time.Time) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("unknown request")
	}
	req.Permanent = &PermanentChangeDetail{StartDate: start, EndDate: end}
	return nil
}

func (s *fakeStore) InsertDebtDetailTx(ctx context.Context, tx pgx.Tx, requestID string, minutes int) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("unknown request")
	}
	req.Debt = &DoubleShiftDetail{DebtMinutes: minutes}
	return nil
}

func (s *fakeStore) GetRequest(ctx context.Context, requestID string) (ChangeRequest, error) {
	req, ok := s.requests[requestID]
	if !ok {
		return ChangeRequest{}, &NotFoundError{Resource: "request", ID: requestID}
	}
	return *req, nil
}

func (s *fakeStore) GetRequestForUpdateTx(ctx context.Context, tx pgx.Tx, requestID string) (ChangeRequest, error) {
	return s.GetRequest(ctx, requestID)
}

func (s *fakeStore) PendingByRequesterOnDateTx(ctx context.Context, tx pgx.Tx, requesterID string, date time.Time) ([]ChangeRequest, error) {
	var out []ChangeRequest
	for _, req := range s.requests {
		if req.RequesterID == requesterID && req.TargetDate.Equal(date) && req.State == StatePending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (s *fakeStore) CancelRequestTx(ctx context.Context, tx pgx.Tx, requestID, note string, resolvedAt time.Time) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("unknown request")
	}
	req.State = StateCancelled
	req.ResolvedAt = &resolvedAt
	if note != "" {
		if req.Comment != "" {
			req.Comment += "\n"
		}
		req.Comment += note
	}
	return nil
}

func (s *fakeStore) SetDecisionTx(ctx context.Context, tx pgx.Tx, requestID, role string, approved bool, decidedAt time.Time) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("unknown request")
	}
	switch role {
	case RoleReceiver:
		req.ReceiverApproved = approved
		req.ReceiverDecidedAt = &decidedAt
	case RoleSupervisor:
		req.SupervisorApproved = approved
		req.SupervisorDecidedAt = &decidedAt
	}
	return nil
}

func (s *fakeStore) SetStateTx(ctx context.Context, tx pgx.Tx, requestID, state string, resolvedAt time.Time) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("unknown request")
	}
	req.State = state
	req.ResolvedAt = &resolvedAt
	return nil
}

func (s *fakeStore) AppendCommentTx(ctx context.Context, tx pgx.Tx, requestID, note string) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("unknown request")
	}
	if req.Comment != "" {
		req.Comment += "\n"
	}
	req.Comment += note
	return nil
}

func (s *fakeStore) SetApplyOutcomeTx(ctx context.Context, tx pgx.Tx, requestID, message string, originRecordID, destinationRecordID *string) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("unknown request")
	}
	req.ApplyMessage = message
	req.OriginRecordID = originRecordID
	req.DestinationRecordID = destinationRecordID
	return nil
}

func (s *fakeStore) HasDuplicatePendingTx(ctx context.Context, tx pgx.Tx, requesterID, receiverID string, date time.Time) (bool, error) {
	for _, req := range s.requests {
		if req.State != StatePending || !req.TargetDate.Equal(date) {
			continue
		}
		if req.RequesterID == requesterID && req.ReceiverID == receiverID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) HasOverlappingPermanentChange(ctx context.Context, requesterID, receiverID string, start, end time.Time) (bool, error) {
	samePair := func(req *ChangeRequest) bool {
		return (req.RequesterID == requesterID && req.ReceiverID == receiverID) ||
			(req.RequesterID == receiverID && req.ReceiverID == requesterID)
	}
	for _, req := range s.requests {
		if req.Permanent == nil || (req.State != StatePending && req.State != StateApproved) {
			continue
		}
		if !samePair(req) {
			continue
		}
		reqEnd := schedule.EndOfYear(req.Permanent.StartDate)
		if req.Permanent.EndDate != nil {
			reqEnd = *req.Permanent.EndDate
		}
		if !req.Permanent.StartDate.After(end) && !reqEnd.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) ListByRequester(ctx context.Context, requesterID string, limit, offset int) ([]ChangeRequest, int, error) {
	var out []ChangeRequest
	for _, req := range s.requests {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, len(out), nil
}

func (s *fakeStore) ListPendingForReceiver(ctx context.Context, receiverID string) ([]ChangeRequest, error) {
	var out []ChangeRequest
	for _, req := range s.requests {
		if req.ReceiverID == receiverID && req.State == StatePending && !req.ReceiverApproved {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (s *fakeStore) ListPendingForSupervisor(ctx context.Context, supervisorID string) ([]ChangeRequest, error) {
	return nil, nil
}

type fakeSchedule struct {
	// shifts maps employee ID to date (2006-01-02) to the shift worked.
	shifts      map[string]map[string]schedule.ShiftInfo
	specialDays map[string]string
	colleagues  map[string][]core.Employee
	rooms       map[string]string
}

func newFakeSchedule() *fakeSchedule {
	return &fakeSchedule{
		shifts:      map[string]map[string]schedule.ShiftInfo{},
		specialDays: map[string]string{},
		colleagues:  map[string][]core.Employee{},
		rooms:       map[string]string{},
	}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func (f *fakeSchedule) setShift(employeeID string, date time.Time, name, templateID string) {
	if f.shifts[employeeID] == nil {
		f.shifts[employeeID] = map[string]schedule.ShiftInfo{}
	}
	f.shifts[employeeID][dateKey(date)] = schedule.ShiftInfo{ShiftTemplateID: templateID, ShiftName: name}
}

// setStandingShift assigns the same shift for every date queried.
func (f *fakeSchedule) setStandingShift(employeeID, name, templateID string) {
	if f.shifts[employeeID] == nil {
		f.shifts[employeeID] = map[string]schedule.ShiftInfo{}
	}
	f.shifts[employeeID]["*"] = schedule.ShiftInfo{ShiftTemplateID: templateID, ShiftName: name}
}

func (f *fakeSchedule) AssignedShift(ctx context.Context, employeeID string, date time.Time) (schedule.ShiftInfo, bool, error) {
	byDate, ok := f.shifts[employeeID]
	if !ok {
		return schedule.ShiftInfo{}, false, nil
	}
	if info, ok := byDate[dateKey(date)]; ok {
		return info, true, nil
	}
	if info, ok := byDate["*"]; ok {
		return info, true, nil
	}
	return schedule.ShiftInfo{}, false, nil
}

func (f *fakeSchedule) OppositeShiftEmployees(ctx context.Context, employeeID string, date time.Time) ([]core.Employee, error) {
	return f.colleagues[employeeID], nil
}

func (f *fakeSchedule) SpecialDayKind(ctx context.Context, date time.Time) (string, bool, error) {
	kind, ok := f.specialDays[dateKey(date)]
	return kind, ok, nil
}

func (f *fakeSchedule) RoomOfRecord(ctx context.Context, employeeID string, date time.Time) (string, bool, error) {
	roomID, ok := f.rooms[employeeID]
	return roomID, ok, nil
}

type upsertCall struct {
	employeeID string
	date       time.Time
	templateID string
	roomID     *string
	changeKind string
}

type fakeWriter struct {
	upserts    []upsertCall
	trims      []string
	inserts    []string
	nextRecord int
	failAfter  int
	failErr    error
}

func (f *fakeWriter) UpsertDayRecordTx(ctx context.Context, tx pgx.Tx, employeeID string, date time.Time, shiftTemplateID string, roomID *string, changeKind string) (string, error) {
	if f.failErr != nil && len(f.upserts) >= f.failAfter {
		return "", f.failErr
	}
	f.upserts = append(f.upserts, upsertCall{employeeID: employeeID, date: date, templateID: shiftTemplateID, roomID: roomID, changeKind: changeKind})
	f.nextRecord++
	return fmt.Sprintf("rec-%d", f.nextRecord), nil
}

func (f *fakeWriter) TrimStandingAssignmentsTx(ctx context.Context, tx pgx.Tx, employeeID string, cutoff time.Time) (int64, error) {
	f.trims = append(f.trims, employeeID)
	return 1, nil
}

func (f *fakeWriter) InsertStandingAssignmentTx(ctx context.Context, tx pgx.Tx, employeeID, shiftTemplateID string, start time.Time, end *time.Time) (string, error) {
	f.inserts = append(f.inserts, employeeID+":"+shiftTemplateID)
	return "sa-" + employeeID, nil
}

type fakeDirectory struct {
	employees   map[string]core.Employee
	supervisors map[string]string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{employees: map[string]core.Employee{}, supervisors: map[string]string{}}
}

func (f *fakeDirectory) addEmployee(id string, active bool) {
	f.employees[id] = core.Employee{ID: id, FirstName: "E", LastName: id, Email: id + "@example.com", Active: active}
}

func (f *fakeDirectory) GetEmployee(ctx context.Context, employeeID string) (core.Employee, error) {
	employee, ok := f.employees[employeeID]
	if !ok {
		return core.Employee{}, core.ErrNotFound
	}
	return employee, nil
}

func (f *fakeDirectory) ListEmployees(ctx context.Context, activeOnly bool, limit, offset int) ([]core.Employee, error) {
	var out []core.Employee
	for _, employee := range f.employees {
		if activeOnly && !employee.Active {
			continue
		}
		out = append(out, employee)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDirectory) IsSupervisorOf(ctx context.Context, supervisorEmployeeID, employeeID string) (bool, error) {
	return f.supervisors[employeeID] == supervisorEmployeeID, nil
}

func (f *fakeDirectory) SupervisorOf(ctx context.Context, employeeID string) (core.Employee, error) {
	supervisorID, ok := f.supervisors[employeeID]
	if !ok {
		return core.Employee{}, core.ErrNotFound
	}
	return f.GetEmployee(ctx, supervisorID)
}

type debtEntry struct {
	employeeID string
	minutes    int
	requestID  string
}

type fakeDebt struct {
	entries []debtEntry
	err     error
}

func (f *fakeDebt) RecordTx(ctx context.Context, tx pgx.Tx, employeeID string, minutes int, requestID string) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, debtEntry{employeeID: employeeID, minutes: minutes, requestID: requestID})
	return nil
}

type sentNote struct {
	recipient string
	actor     string
	kind      string
	title     string
}

type fakeNotifier struct {
	sent []sentNote
}

func (f *fakeNotifier) Notify(ctx context.Context, recipientEmployeeID, actorEmployeeID, kind, title, body string) error {
	f.sent = append(f.sent, sentNote{recipient: recipientEmployeeID, actor: actorEmployeeID, kind: kind, title: title})
	return nil
}

// fixture wires a service with the standard cast: ana works AM, bob
// works PM, sue supervises both.
type fixture struct {
	store    *fakeStore
	sched    *fakeSchedule
	writer   *fakeWriter
	dir      *fakeDirectory
	debt     *fakeDebt
	notifier *fakeNotifier
	service  *Service
}

func newFixture() *fixture {
	store := newFakeStore()
	sched := newFakeSchedule()
	writer := &fakeWriter{}
	dir := newFakeDirectory()
	debt := &fakeDebt{}
	notifier := &fakeNotifier{}

	dir.addEmployee("ana", true)
	dir.addEmployee("bob", true)
	dir.addEmployee("sue", true)
	dir.supervisors["ana"] = "sue"
	dir.supervisors["bob"] = "sue"
	sched.setStandingShift("ana", "AM", "tpl-am")
	sched.setStandingShift("bob", "PM", "tpl-pm")
	sched.rooms["ana"] = "room-1"
	sched.rooms["bob"] = "room-2"
	sched.rooms["sue"] = "room-3"

	clock := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	rules := NewRules(sched, dir, store)
	rules.Now = clock
	registry := NewRegistry(rules, store, sched, writer, dir, debt)
	service := NewService(store, registry, dir, notifier)
	service.now = clock

	return &fixture{store: store, sched: sched, writer: writer, dir: dir, debt: debt, notifier: notifier, service: service}
}

// monday is a plain weekday used as the default target date.
var monday = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
