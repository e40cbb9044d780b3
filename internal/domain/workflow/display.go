package workflow

// DisplayStatus maps persisted state plus approval flags to the phrase
// shown to users. Pure: it never touches storage.
func DisplayStatus(req ChangeRequest) string {
	switch req.State {
	case StateApproved:
		return "Approved"
	case StateRejected:
		return "Rejected"
	case StateCancelled:
		return "Cancelled"
	case StateSettled:
		return "Settled"
	case StatePending:
		switch {
		case req.SupervisorApproved && !req.ReceiverApproved:
			return "Approved by supervisor, awaiting colleague"
		case req.ReceiverApproved && !req.SupervisorApproved:
			return "Approved by colleague, awaiting supervisor"
		default:
			return "Pending both approvals"
		}
	}
	return "Unknown"
}
