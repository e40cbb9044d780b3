package debt

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one ledger line. Positive minutes are owed hours accrued by
// an approved double shift; negative minutes settle them.
type Entry struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	RequestID  string    `json:"requestId"`
	Minutes    int       `json:"minutes"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Balance struct {
	EmployeeID string          `json:"employeeId"`
	Minutes    int             `json:"minutes"`
	Hours      decimal.Decimal `json:"hours"`
}

// HoursFromMinutes converts a minute total to hours with two decimal
// places, the unit the reports present.
func HoursFromMinutes(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Round(2)
}
