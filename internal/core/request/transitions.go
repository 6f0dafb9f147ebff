package request

import (
	"fmt"
	"time"
)

// Acknowledge moves an open request to acknowledged.
// There is no way back to open.
func Acknowledge(r ServiceRequest, by string, at time.Time) (ServiceRequest, error) {
	switch r.State.(type) {
	case Open, nil:
		r.State = Acknowledged{By: by, At: at}
		return r, nil
	case Acknowledged:
		return r, fmt.Errorf("%w: %s already acknowledged", ErrNotOpen, r.ID)
	default:
		return r, fmt.Errorf("%w: cannot acknowledge %s", ErrClosed, r.ID)
	}
}

// Close moves an open or acknowledged request to closed.
func Close(r ServiceRequest, at time.Time) (ServiceRequest, error) {
	if _, closed := r.State.(Closed); closed {
		return r, fmt.Errorf("%w: %s already closed", ErrClosed, r.ID)
	}
	r.State = Closed{At: at}
	return r, nil
}

// CanAcknowledge evaluates whether a stored status allows acknowledgment.
// Rule: only open requests can be acknowledged.
func CanAcknowledge(status Status) error {
	switch status {
	case StatusOpen:
		return nil
	case StatusClosed:
		return ErrClosed
	default:
		return ErrNotOpen
	}
}

// CanClose evaluates whether a stored status allows closing.
// Rule: closed is terminal.
func CanClose(status Status) error {
	if status == StatusClosed {
		return ErrClosed
	}
	return nil
}
