package formstate

import "errors"

var (
	// ErrUnknownSection is returned for a section name outside the fixed set.
	ErrUnknownSection = errors.New("unknown section")

	// ErrRecordType is returned when a record does not match its section's type.
	ErrRecordType = errors.New("record type does not match section")
)
