package occupancy

import (
	"fmt"
	"time"
)

// ResourceKind distinguishes discrete resources from time-ranged ones.
type ResourceKind string

const (
	ResourceNone     ResourceKind = ""
	ResourceSpot     ResourceKind = "spot"
	ResourceFacility ResourceKind = "facility"
)

// ResourceRef points at a registry resource. The zero value means "no resource".
type ResourceRef struct {
	Kind ResourceKind `json:"kind,omitempty"`
	ID   string       `json:"id,omitempty"`
}

func (r ResourceRef) IsZero() bool { return r.Kind == ResourceNone || r.ID == "" }

// IsDiscrete reports whether the resource has a binary occupied/free state.
func (r ResourceRef) IsDiscrete() bool { return r.Kind == ResourceSpot && r.ID != "" }

func (r ResourceRef) String() string {
	if r.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}

// Window is a scheduled slot on one date. Start and End are minutes since
// midnight and describe the half-open interval [Start, End).
type Window struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Start int    `json:"start"`
	End   int    `json:"end"`
}

const dateLayout = "2006-01-02"

// Validate checks the date format and that the window is non-empty and within a day.
func (w Window) Validate() error {
	if _, err := time.Parse(dateLayout, w.Date); err != nil {
		return fmt.Errorf("%w: invalid window date %q", ErrValidation, w.Date)
	}
	if w.Start < 0 || w.End > 24*60 || w.Start >= w.End {
		return fmt.Errorf("%w: window %s must satisfy 00:00 <= start < end <= 24:00", ErrValidation, w)
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d", w.Date, w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// CourierMethod records how a courier visit was announced.
type CourierMethod string

const (
	MethodManual CourierMethod = "manual"
	MethodApp    CourierMethod = "app"
)

// Record is one subject's claim on one resource through its lifecycle.
type Record struct {
	ID              string        `json:"id"`
	Family          Family        `json:"family"`
	Resource        ResourceRef   `json:"resource"`
	SubjectRef      string        `json:"subjectRef"`
	SubjectName     string        `json:"subjectName"`
	Unit            string        `json:"unit,omitempty"`
	State           State         `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	StateChangedAt  time.Time     `json:"stateChangedAt"`
	Window          *Window       `json:"scheduledWindow,omitempty"`
	EntryTime       *time.Time    `json:"entryTime,omitempty"`
	ExitTime        *time.Time    `json:"exitTime,omitempty"`
	Note            string        `json:"note,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	Method          CourierMethod `json:"method,omitempty"`
	LastActor       string        `json:"lastActor,omitempty"`
}

// IsTerminal reports whether the record can no longer change.
func (r *Record) IsTerminal() bool { return r.Family.IsTerminal(r.State) }

// Intake describes a new record before it is persisted.
type Intake struct {
	Family       Family
	Resource     ResourceRef
	SubjectRef   string
	SubjectName  string
	Unit         string
	Window       *Window
	Note         string
	Method       CourierMethod
	InitialState State
	Actor        string
}

// TransitionContext carries the optional payload of a transition request.
type TransitionContext struct {
	RejectionReason string
	Note            string
}
