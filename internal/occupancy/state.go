package occupancy

import "fmt"

// Family identifies which lifecycle graph a record follows.
type Family string

const (
	FamilyVisit   Family = "visit"
	FamilyBooking Family = "booking"
	FamilyCargo   Family = "cargo"
	FamilyCourier Family = "courier"
)

// State is a lifecycle state. Which states are legal depends on the Family.
type State string

const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateConfirmed State = "confirmed"
	StateReceived  State = "received"
	StateDelivered State = "delivered"
	StateReturned  State = "returned"
	StateInside    State = "inside"
)

func (s State) String() string { return string(s) }

// lifecycle is the transition table of one family.
type lifecycle struct {
	states     []State // display order
	initial    []State
	edges      map[State][]State
	occupied   State // state in which a discrete resource is held; "" if none
	completion State // state counted as "completed today"; "" if none
	claims     []State
}

var lifecycles = map[Family]lifecycle{
	FamilyVisit: {
		states:  []State{StatePending, StateActive, StateCompleted, StateCancelled},
		initial: []State{StatePending},
		edges: map[State][]State{
			StatePending:   {StateActive, StateCancelled},
			StateActive:    {StateCompleted},
			StateCompleted: {},
			StateCancelled: {},
		},
		occupied:   StateActive,
		completion: StateCompleted,
		claims:     []State{StatePending, StateActive},
	},
	FamilyBooking: {
		states:  []State{StatePending, StateConfirmed, StateCancelled},
		initial: []State{StatePending},
		edges: map[State][]State{
			StatePending:   {StateConfirmed, StateCancelled},
			StateConfirmed: {},
			StateCancelled: {},
		},
		// confirmed is terminal but still holds its window.
		claims: []State{StatePending, StateConfirmed},
	},
	FamilyCargo: {
		states:  []State{StateReceived, StateDelivered, StateReturned},
		initial: []State{StateReceived},
		edges: map[State][]State{
			StateReceived:  {StateDelivered, StateReturned},
			StateDelivered: {},
			StateReturned:  {},
		},
		completion: StateDelivered,
		claims:     []State{StateReceived},
	},
	FamilyCourier: {
		states:  []State{StatePending, StateInside, StateCompleted},
		initial: []State{StatePending, StateInside},
		edges: map[State][]State{
			StatePending:   {StateInside},
			StateInside:    {StateCompleted},
			StateCompleted: {},
		},
		occupied:   StateInside,
		completion: StateCompleted,
		claims:     []State{StatePending, StateInside},
	},
}

// Families lists every known family in a stable order.
func Families() []Family {
	return []Family{FamilyVisit, FamilyBooking, FamilyCargo, FamilyCourier}
}

func (f Family) String() string { return string(f) }

func (f Family) IsValid() bool {
	_, ok := lifecycles[f]
	return ok
}

// ParseFamily converts a string to a Family, returning an error if unknown.
func ParseFamily(s string) (Family, error) {
	f := Family(s)
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown family %q", ErrValidation, s)
	}
	return f, nil
}

// States returns the family's states in display order.
func (f Family) States() []State {
	return append([]State(nil), lifecycles[f].states...)
}

// HasState reports whether s belongs to the family's graph.
func (f Family) HasState(s State) bool {
	_, ok := lifecycles[f].edges[s]
	return ok
}

// IsInitial reports whether a record of this family may be created in s.
func (f Family) IsInitial(s State) bool {
	return contains(lifecycles[f].initial, s)
}

// DefaultInitial is the state used by intake when none is requested.
func (f Family) DefaultInitial() State {
	lc := lifecycles[f]
	if len(lc.initial) == 0 {
		return ""
	}
	return lc.initial[0]
}

// CanTransition reports whether the graph has an edge from -> to.
func (f Family) CanTransition(from, to State) bool {
	return contains(lifecycles[f].edges[from], to)
}

// IsTerminal returns true if no further transitions are possible from s.
func (f Family) IsTerminal(s State) bool {
	edges, ok := lifecycles[f].edges[s]
	if !ok {
		return true
	}
	return len(edges) == 0
}

// OccupiedState is the state that marks an assigned discrete resource occupied.
func (f Family) OccupiedState() State { return lifecycles[f].occupied }

// CompletionState is the success state whose exit time feeds "completed today".
func (f Family) CompletionState() State { return lifecycles[f].completion }

// Claims reports whether a record in s still holds its resource for conflict
// purposes.
func (f Family) Claims(s State) bool {
	return contains(lifecycles[f].claims, s)
}

// ClaimingStates lists the states returned true by Claims.
func (f Family) ClaimingStates() []State {
	return append([]State(nil), lifecycles[f].claims...)
}

func contains(states []State, s State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
