package notifications

// Notification kinds. The value is stored as-is and consumed by clients
// to pick an icon and a route.
const (
	TypeRequestSubmitted  = "request_submitted"
	TypeRequestApproved   = "request_approved"
	TypeRequestRejected   = "request_rejected"
	TypeRequestCancelled  = "request_cancelled"
	TypeRequestSuperseded = "request_superseded"
	TypeDebtSettled       = "debt_settled"
)
