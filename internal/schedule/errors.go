package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is returned by availability reads when the request
// carries a malformed date or an unknown time slot.  Handlers should
// translate it into an HTTP 400 response.
var ErrInvalidInput = errors.New("invalid input")

// ErrTechnicianUnavailable is returned when a requested technician is
// not in the roster or no longer free for the requested date and slot.
// The caller can recover by choosing a different technician or slot.
var ErrTechnicianUnavailable = errors.New("technician unavailable")

// ErrNoCapacity is returned when no technician at all is free for the
// requested date and slot.  The booking is not created.
var ErrNoCapacity = errors.New("no capacity")

// ErrDuplicateReference signals that an insert collided on the unique
// reference number index.  The allocator regenerates the reference and
// retries once; stores must map their uniqueness violation onto this
// value.
var ErrDuplicateReference = errors.New("duplicate reference number")

// ErrSlotTaken signals that an insert collided on the storage-level
// (date, slot, technician) uniqueness constraint: another request won
// the race between the availability re-check and the write.  Stores
// must map their constraint violation onto this value.
var ErrSlotTaken = errors.New("slot already taken")

// FieldError names one failing request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every failing booking field so clients
// can fix their input in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UpstreamError wraps a collaborator failure (roster or booking store
// unreachable, unexpected response).  Reads never retry; the failure
// propagates immediately.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
