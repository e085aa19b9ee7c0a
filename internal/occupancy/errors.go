package occupancy

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrResourceConflict  = errors.New("resource conflict")
	ErrNotFound          = errors.New("not found")
	ErrRepository        = errors.New("repository error")
	ErrValidation        = errors.New("validation error")
	ErrStaleState        = errors.New("record state changed concurrently")
)

// TransitionError describes a rejected state change.
type TransitionError struct {
	Family Family
	From   State
	To     State
	Reason string
	kind   error
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s: %s %s -> %s", e.kind, e.Family, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return e.kind }

func invalidTransition(f Family, from, to State, reason string) *TransitionError {
	return &TransitionError{Family: f, From: from, To: to, Reason: reason, kind: ErrInvalidTransition}
}

// ConflictCause tells apart a clash with other records from a resource that
// cannot take the request at all.
type ConflictCause string

const (
	// CauseOverlap: the window collides with other bookings beyond capacity.
	CauseOverlap ConflictCause = "overlap"
	// CauseOccupied: a discrete resource already has a claiming record.
	CauseOccupied ConflictCause = "occupied"
	// CauseUnavailable: the facility is closed, in maintenance or outside its hours.
	CauseUnavailable ConflictCause = "unavailable"
)

// ConflictError carries what the caller needs to adjust a rejected request:
// the windows it collided with or the current occupant of a discrete resource.
type ConflictError struct {
	Cause      ConflictCause
	Resource   ResourceRef
	Requested  *Window
	Windows    []Window
	OccupantID string
	Reason     string
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resource conflict on %s", e.Resource)
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.OccupantID != "" {
		fmt.Fprintf(&b, " (held by %s)", e.OccupantID)
	}
	if len(e.Windows) > 0 {
		parts := make([]string, len(e.Windows))
		for i, w := range e.Windows {
			parts[i] = w.String()
		}
		fmt.Fprintf(&b, " (overlaps %s)", strings.Join(parts, ", "))
	}
	return b.String()
}

func (e *ConflictError) Unwrap() error { return ErrResourceConflict }
