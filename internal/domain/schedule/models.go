package schedule

import "time"

const (
	SpecialDayHoliday     = "holiday"
	SpecialDayMaintenance = "maintenance"
)

// Change kinds recorded on day records written by an approved request.
const (
	SourceBaseline  = ""
	SourceSwap      = "swap"
	SourcePermanent = "permanent_change"
)

type DayRecord struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	Date            time.Time `json:"date"`
	ShiftTemplateID string    `json:"shiftTemplateId"`
	ShiftName       string    `json:"shiftName"`
	RoomID          *string   `json:"roomId,omitempty"`
	RoomName        string    `json:"roomName,omitempty"`
	ChangeKind      string    `json:"changeKind,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type StandingAssignment struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	ShiftTemplateID string     `json:"shiftTemplateId"`
	ShiftName       string     `json:"shiftName"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty"`
}

type SpecialDay struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
}

// ShiftInfo is the resolved shift for an employee on a concrete date.
type ShiftInfo struct {
	ShiftTemplateID string `json:"shiftTemplateId"`
	ShiftName       string `json:"shiftName"`
	RoomID          *string
	RoomName        string `json:"roomName,omitempty"`
	FromDayRecord   bool   `json:"fromDayRecord"`
}

// ShiftDetail adds room resolution on top of ShiftInfo. When no single
// room is pinned for the day the shift is virtual and Rooms carries the
// employee's competency list.
type ShiftDetail struct {
	ShiftInfo
	Virtual bool     `json:"virtual"`
	Rooms   []string `json:"rooms,omitempty"`
}
