package models

import (
	"errors"
	"fmt"
)

// ErrActivityLocked is returned for any mutation attempted on a settled
// activity. It is always surfaced to the caller and never retried.
var ErrActivityLocked = errors.New("activity is locked")

// ErrNotFound is the storage-agnostic missing-row error.
var ErrNotFound = errors.New("not found")

// InvalidSplitError reports a malformed split directive set: an empty
// directive list, a negative value, or RATIO with zero total weight.
// The caller is expected to resubmit.
type InvalidSplitError struct {
	Reason string
}

func (e *InvalidSplitError) Error() string {
	return fmt.Sprintf("invalid split: %s", e.Reason)
}

// ParticipantNotEligibleError reports a directive referencing a participant
// whose join policy makes them not liable for the expense.
type ParticipantNotEligibleError struct {
	UserID    string
	ExpenseID string
}

func (e *ParticipantNotEligibleError) Error() string {
	return fmt.Sprintf("participant %s is not eligible for expense %s", e.UserID, e.ExpenseID)
}

// IsInvalidSplit reports whether err is an InvalidSplitError.
func IsInvalidSplit(err error) bool {
	var ise *InvalidSplitError
	return errors.As(err, &ise)
}

// IsNotEligible reports whether err is a ParticipantNotEligibleError.
func IsNotEligible(err error) bool {
	var pne *ParticipantNotEligibleError
	return errors.As(err, &pne)
}
