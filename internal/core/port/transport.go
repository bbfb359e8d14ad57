package port

import "context"

// Transport is the external send API. It is an unreliable remote call:
// any integer status may come back, and only 200 counts as delivered. A
// non-nil error means no status was obtained at all (connectivity, bad
// response), which the delivery loop treats as a loop-terminating fault
// rather than a retriable send failure.
type Transport interface {
	Send(ctx context.Context, attemptID, phone int64, text string) (int, error)
}
