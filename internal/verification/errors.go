package verification

import "errors"

var (
	// ErrMissingCredential is returned when neither an encounter ID nor a
	// complete name+DOB triple was supplied.
	ErrMissingCredential = errors.New("verification credential is incomplete")

	// ErrNotFound is returned when no eligible record matches the credential.
	ErrNotFound = errors.New("no appointment found")

	// ErrAlreadyCheckedIn is returned when the record matched but the patient
	// has already completed check-in today.
	ErrAlreadyCheckedIn = errors.New("patient already checked in")

	// ErrBackend wraps record-store failures; callers surface it as a
	// generic retryable error.
	ErrBackend = errors.New("verification backend unavailable")
)
