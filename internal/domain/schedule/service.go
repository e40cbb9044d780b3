package schedule

import (
	"context"
	"time"

	"shiftswap/internal/domain/core"
)

type Service struct {
	Store *Store
	Core  *core.Store
}

func NewService(store *Store, coreStore *core.Store) *Service {
	return &Service{Store: store, Core: coreStore}
}

// AssignedShift resolves the employee's shift on a date. A day record
// is authoritative; otherwise the standing assignment in force applies.
func (s *Service) AssignedShift(ctx context.Context, employeeID string, date time.Time) (ShiftInfo, bool, error) {
	rec, ok, err := s.Store.DayRecord(ctx, employeeID, date)
	if err != nil {
		return ShiftInfo{}, false, err
	}
	if ok {
		return ShiftInfo{
			ShiftTemplateID: rec.ShiftTemplateID,
			ShiftName:       rec.ShiftName,
			RoomID:          rec.RoomID,
			RoomName:        rec.RoomName,
			FromDayRecord:   true,
		}, true, nil
	}

	standing, ok, err := s.Store.StandingShift(ctx, employeeID, date)
	if err != nil {
		return ShiftInfo{}, false, err
	}
	if !ok {
		return ShiftInfo{}, false, nil
	}
	return ShiftInfo{
		ShiftTemplateID: standing.ShiftTemplateID,
		ShiftName:       standing.ShiftName,
	}, true, nil
}

// ShiftDetail resolves the shift plus the room of record. Without a
// pinned room the shift is virtual and carries the competency rooms.
func (s *Service) ShiftDetail(ctx context.Context, employeeID string, date time.Time) (ShiftDetail, bool, error) {
	info, ok, err := s.AssignedShift(ctx, employeeID, date)
	if err != nil || !ok {
		return ShiftDetail{}, ok, err
	}

	detail := ShiftDetail{ShiftInfo: info}
	if info.RoomName != "" {
		return detail, true, nil
	}

	roomID, roomName, ok, err := s.Store.SpecialRoomOn(ctx, employeeID, date)
	if err != nil {
		return ShiftDetail{}, false, err
	}
	if ok {
		detail.RoomID = &roomID
		detail.RoomName = roomName
		return detail, true, nil
	}

	rooms, err := s.Core.CompetentRooms(ctx, employeeID)
	if err != nil {
		return ShiftDetail{}, false, err
	}
	detail.Virtual = true
	for _, room := range rooms {
		detail.Rooms = append(detail.Rooms, room.Name)
	}
	return detail, true, nil
}

// RoomOfRecord resolves the room a schedule write for the employee
// should carry on the date: the room assignment in force wins,
// otherwise the first competency room. Returns false when the employee
// has neither.
func (s *Service) RoomOfRecord(ctx context.Context, employeeID string, date time.Time) (string, bool, error) {
	roomID, _, ok, err := s.Store.SpecialRoomOn(ctx, employeeID, date)
	if err != nil {
		return "", false, err
	}
	if ok {
		return roomID, true, nil
	}
	rooms, err := s.Core.CompetentRooms(ctx, employeeID)
	if err != nil {
		return "", false, err
	}
	if len(rooms) == 0 {
		return "", false, nil
	}
	return rooms[0].ID, true, nil
}

// OppositeShiftEmployees lists active employees working the opposite
// shift of the given employee on the date. An employee without a shift,
// or on an unmapped shift, simply yields an empty list.
func (s *Service) OppositeShiftEmployees(ctx context.Context, employeeID string, date time.Time) ([]core.Employee, error) {
	own, ok, err := s.AssignedShift(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	opposite, ok := OppositeShiftName(own.ShiftName)
	if !ok {
		return nil, nil
	}
	return s.EmployeesOnShift(ctx, opposite, date, employeeID)
}

// EmployeesOnShift lists active employees resolved to the named shift
// on the date, excluding the given employee.
func (s *Service) EmployeesOnShift(ctx context.Context, shiftName string, date time.Time, excludeEmployeeID string) ([]core.Employee, error) {
	pinned, err := s.Store.DayRecordShiftsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	standing, err := s.Store.StandingShiftsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	employees, err := s.Core.ListEmployees(ctx, true, 1000, 0)
	if err != nil {
		return nil, err
	}

	var out []core.Employee
	for _, e := range employees {
		if e.ID == excludeEmployeeID {
			continue
		}
		resolved, ok := pinned[e.ID]
		if !ok {
			resolved, ok = standing[e.ID]
		}
		if !ok || resolved != shiftName {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// SpecialDayKind reports the blackout kind in force on the date, if any.
func (s *Service) SpecialDayKind(ctx context.Context, date time.Time) (string, bool, error) {
	day, ok, err := s.Store.SpecialDayOn(ctx, date)
	if err != nil || !ok {
		return "", false, err
	}
	return day.Kind, true, nil
}

// RosterEntry is one line of the day view.
type RosterEntry struct {
	Employee  core.Employee `json:"employee"`
	ShiftName string        `json:"shiftName"`
	Pinned    bool          `json:"pinned"`
}

// DayRoster resolves every active employee's shift for the date. The
// special day in force, if any, rides along so the view can flag it.
func (s *Service) DayRoster(ctx context.Context, date time.Time) ([]RosterEntry, *SpecialDay, error) {
	pinned, err := s.Store.DayRecordShiftsForDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	standing, err := s.Store.StandingShiftsForDate(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	employees, err := s.Core.ListEmployees(ctx, true, 1000, 0)
	if err != nil {
		return nil, nil, err
	}

	var entries []RosterEntry
	for _, e := range employees {
		name, ok := pinned[e.ID]
		fromRecord := ok
		if !ok {
			name, ok = standing[e.ID]
		}
		if !ok {
			continue
		}
		entries = append(entries, RosterEntry{Employee: e, ShiftName: name, Pinned: fromRecord})
	}

	day, ok, err := s.Store.SpecialDayOn(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return entries, nil, nil
	}
	return entries, &day, nil
}

func (s *Service) ListSpecialDays(ctx context.Context, from, to time.Time) ([]SpecialDay, error) {
	return s.Store.ListSpecialDays(ctx, from, to)
}

func (s *Service) CreateSpecialDay(ctx context.Context, date time.Time, kind, description string) (string, error) {
	return s.Store.CreateSpecialDay(ctx, date, kind, description)
}

func (s *Service) DeactivateSpecialDay(ctx context.Context, specialDayID string) error {
	return s.Store.DeactivateSpecialDay(ctx, specialDayID)
}
