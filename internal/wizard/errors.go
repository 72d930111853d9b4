package wizard

import "errors"

var (
	// ErrUnknownStep is returned for a step ID or path outside the sequence.
	ErrUnknownStep = errors.New("unknown step")

	// ErrNotVerified means the session has not passed the appointment gate;
	// callers redirect to the verification screen.
	ErrNotVerified = errors.New("session not verified")

	// ErrValidation means the step's required fields are incomplete; the
	// continue control stays disabled and no save occurs.
	ErrValidation = errors.New("validation failed")
)
