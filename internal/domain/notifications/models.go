package notifications

import "time"

type Notification struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	ActorEmployeeID string     `json:"actorEmployeeId,omitempty"`
	Kind            string     `json:"kind"`
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	ReadAt          *time.Time `json:"readAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
