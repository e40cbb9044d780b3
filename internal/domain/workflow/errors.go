package workflow

import "fmt"

// ValidationError reports a business rule the request payload violates.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// PermissionError reports an actor acting outside their allowed role.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

// StateConflictError reports an operation invalid for the request's
// current state. State names the state that caused the conflict when
// it is known.
type StateConflictError struct {
	State   string
	Message string
}

func (e *StateConflictError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ApplicationFailure reports that an approved request could not be
// applied to the schedule. The approval itself stands.
type ApplicationFailure struct {
	Message string
	Err     error
}

func (e *ApplicationFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ApplicationFailure) Unwrap() error {
	return e.Err
}
