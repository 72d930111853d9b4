package patients

import "errors"

var (
	// ErrPatientNotFound is returned when no record matches the lookup.
	ErrPatientNotFound = errors.New("patient not found")
)
