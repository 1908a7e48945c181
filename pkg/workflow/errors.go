package workflow

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindValidation   ErrorKind = "validation"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInvalidState ErrorKind = "invalid_state"
)

type ErrorReason string

const (
	ReasonWorkflowNotFound     ErrorReason = "workflow_not_found"
	ReasonSubmissionNotFound   ErrorReason = "submission_not_found"
	ReasonEmptyApproverGroup   ErrorReason = "empty_approver_group"
	ReasonUnauthorizedApprover ErrorReason = "unauthorized_approver"
	ReasonMissingRequiredField ErrorReason = "missing_required_field"
	ReasonInvalidWorkflowType  ErrorReason = "invalid_workflow_type"
	ReasonNotAnApprover        ErrorReason = "not_an_approver"
	ReasonAlreadyApproved      ErrorReason = "already_approved"
	ReasonNotApproved          ErrorReason = "not_approved"
	ReasonTerminalSubmission   ErrorReason = "terminal_submission"
)

// Error is the workflow core's taxonomy. Storage and transport failures are
// not wrapped in it; they propagate as-is so callers can tell a client error
// from an infrastructure one.
type Error struct {
	Kind    ErrorKind
	Reason  ErrorReason
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Reason, e.Message)
}

func newError(kind ErrorKind, reason ErrorReason, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the taxonomy kind, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ReasonOf extracts the taxonomy reason, or "" for infrastructure errors.
func ReasonOf(err error) ErrorReason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
