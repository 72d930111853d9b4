package checkin

import "errors"

var (
	// ErrNotVerified means the session tried to submit without passing the
	// appointment gate.
	ErrNotVerified = errors.New("session not verified")

	// ErrInFlight means a submission for this session is still running; the
	// second tap is dropped rather than queued.
	ErrInFlight = errors.New("submission already in flight")
)

// SubmitError carries the backend's rejection. Message is surfaced to the
// patient verbatim when the backend provided one.
type SubmitError struct {
	StatusCode int
	Message    string
	Details    map[string]string
}

func (e *SubmitError) Error() string {
	if e.Message != "" {
		return "checkin: backend rejected submission: " + e.Message
	}
	return "checkin: backend rejected submission"
}
