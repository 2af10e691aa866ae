package service

import (
	"errors"
	"fmt"
)

// ErrReferenceDataUnavailable marks a missing or corrupt reference dataset.
// Search degrades to empty results; nothing else is affected.
var ErrReferenceDataUnavailable = errors.New("reference data unavailable")

// ValidationError reports a required field that is empty or out of range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// UnsafeIntervalError blocks a dosing interval below the reference minimum.
// It is only bypassed by an explicit caller override, never automatically.
type UnsafeIntervalError struct {
	ChosenHours int
	MinHours    int
}

func (e *UnsafeIntervalError) Error() string {
	return fmt.Sprintf("interval of %dh is below the safe minimum of %dh", e.ChosenHours, e.MinHours)
}
