package occupancy

import (
	"fmt"
	"strings"
	"time"
)

// Machine applies the per-family transition tables. It is the only code that
// assigns State and StateChangedAt; timestamps come from its clock, never from
// the caller.
type Machine struct {
	now func() time.Time
}

// NewMachine creates a state machine. A nil clock defaults to time.Now in UTC.
func NewMachine(now func() time.Time) *Machine {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Machine{now: now}
}

// Open validates an intake request and returns the initial record. The ID is
// left empty; the repository assigns it on insert.
func (m *Machine) Open(in Intake) (*Record, error) {
	if !in.Family.IsValid() {
		return nil, fmt.Errorf("%w: unknown family %q", ErrValidation, in.Family)
	}
	if strings.TrimSpace(in.SubjectRef) == "" && strings.TrimSpace(in.SubjectName) == "" {
		return nil, fmt.Errorf("%w: subject reference or name is required", ErrValidation)
	}

	state := in.InitialState
	if state == "" {
		state = in.Family.DefaultInitial()
	}
	if !in.Family.IsInitial(state) {
		return nil, fmt.Errorf("%w: %s records cannot start in %q", ErrValidation, in.Family, state)
	}

	switch in.Family {
	case FamilyBooking:
		if in.Resource.Kind != ResourceFacility || in.Resource.ID == "" {
			return nil, fmt.Errorf("%w: a booking needs a facility", ErrValidation)
		}
		if in.Window == nil {
			return nil, fmt.Errorf("%w: a booking needs a scheduled window", ErrValidation)
		}
		if err := in.Window.Validate(); err != nil {
			return nil, err
		}
	case FamilyVisit, FamilyCargo, FamilyCourier:
		if in.Resource.Kind == ResourceFacility {
			return nil, fmt.Errorf("%w: %s records cannot reference a facility", ErrValidation, in.Family)
		}
		if in.Window != nil {
			if err := in.Window.Validate(); err != nil {
				return nil, err
			}
		}
	}

	method := in.Method
	if in.Family == FamilyCourier && method == "" {
		method = MethodManual
	}
	if method != "" && method != MethodManual && method != MethodApp {
		return nil, fmt.Errorf("%w: unknown courier method %q", ErrValidation, method)
	}

	now := m.now()
	rec := &Record{
		Family:         in.Family,
		Resource:       in.Resource,
		SubjectRef:     strings.TrimSpace(in.SubjectRef),
		SubjectName:    strings.TrimSpace(in.SubjectName),
		Unit:           strings.TrimSpace(in.Unit),
		State:          state,
		CreatedAt:      now,
		StateChangedAt: now,
		Window:         in.Window,
		Note:           in.Note,
		Method:         method,
		LastActor:      in.Actor,
	}
	if state == in.Family.OccupiedState() {
		rec.EntryTime = &now
	}
	return rec, nil
}

// Transition computes the record that results from moving rec to target.
// The input is never modified. changed is false when rec is already in
// target, in which case rec itself is returned.
func (m *Machine) Transition(rec *Record, target State, actor string, tc TransitionContext) (*Record, bool, error) {
	if rec == nil {
		return nil, false, fmt.Errorf("%w: nil record", ErrValidation)
	}
	if rec.State == target {
		return rec, false, nil
	}
	f := rec.Family
	if !f.HasState(target) {
		return nil, false, invalidTransition(f, rec.State, target, "state does not exist for this family")
	}
	if f.IsTerminal(rec.State) {
		return nil, false, invalidTransition(f, rec.State, target, "record is in a terminal state")
	}
	if !f.CanTransition(rec.State, target) {
		return nil, false, invalidTransition(f, rec.State, target, "")
	}

	reason := strings.TrimSpace(tc.RejectionReason)
	if f == FamilyBooking && target == StateCancelled && reason == "" {
		return nil, false, &TransitionError{
			Family: f, From: rec.State, To: target,
			Reason: "a rejection reason is required",
			kind:   ErrValidation,
		}
	}

	now := m.now()
	next := *rec
	next.State = target
	next.StateChangedAt = now
	next.LastActor = actor
	if tc.Note != "" {
		next.Note = tc.Note
	}
	if target == StateCancelled {
		next.RejectionReason = reason
	}
	if target == f.OccupiedState() && next.EntryTime == nil {
		next.EntryTime = &now
	}
	if target == StateCompleted || target == StateDelivered {
		next.ExitTime = &now
	}
	return &next, true, nil
}

// ReleasesResource reports whether moving from -> to frees an occupied
// discrete resource.
func ReleasesResource(f Family, from, to State) bool {
	occupied := f.OccupiedState()
	return occupied != "" && from == occupied && to != occupied
}

// OccupiesResource reports whether moving into to marks a discrete resource
// occupied.
func OccupiesResource(f Family, to State) bool {
	occupied := f.OccupiedState()
	return occupied != "" && to == occupied
}
