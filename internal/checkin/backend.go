package checkin

import "context"

// Backend delivers a completed check-in to the clinic's system of record.
type Backend interface {
	Submit(ctx context.Context, encounterID string, payload Payload) (*Confirmation, error)
}
