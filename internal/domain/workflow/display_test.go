package workflow

import "testing"

func TestDisplayStatus(t *testing.T) {
	cases := []struct {
		name     string
		request  ChangeRequest
		expected string
	}{
		{"pending no approvals", ChangeRequest{State: StatePending}, "Pending both approvals"},
		{"pending supervisor only", ChangeRequest{State: StatePending, SupervisorApproved: true}, "Approved by supervisor, awaiting colleague"},
		{"pending receiver only", ChangeRequest{State: StatePending, ReceiverApproved: true}, "Approved by colleague, awaiting supervisor"},
		{"approved", ChangeRequest{State: StateApproved, ReceiverApproved: true, SupervisorApproved: true}, "Approved"},
		{"rejected", ChangeRequest{State: StateRejected}, "Rejected"},
		{"rejected after one approval", ChangeRequest{State: StateRejected, ReceiverApproved: true}, "Rejected"},
		{"cancelled", ChangeRequest{State: StateCancelled}, "Cancelled"},
		{"settled", ChangeRequest{State: StateSettled}, "Settled"},
		{"unknown state", ChangeRequest{State: "garbage"}, "Unknown"},
	}

	for _, tc := range cases {
		if got := DisplayStatus(tc.request); got != tc.expected {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}
