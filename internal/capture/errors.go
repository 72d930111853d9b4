package capture

import "errors"

var (
	// ErrUnsupportedType means the file is not on the image allow-list.
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrTooLarge means the file exceeds the configured size ceiling.
	ErrTooLarge = errors.New("image too large")

	// ErrUnknownKind means the request named a document kind the kiosk
	// does not collect.
	ErrUnknownKind = errors.New("unknown document kind")

	// ErrLiveCapture means the configured adapter has no camera capability.
	ErrLiveCapture = errors.New("live capture not available")
)
