package api

import (
	"fmt"
	"time"

	"residence-occupancy-backend/internal/occupancy"
	"residence-occupancy-backend/internal/parse"
	"residence-occupancy-backend/internal/stats"
	"residence-occupancy-backend/internal/store"
)

// windowDTO is a scheduled window as exchanged with clients.
type windowDTO struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (w *windowDTO) toDomain() (*occupancy.Window, error) {
	if w == nil {
		return nil, nil
	}
	start, err := parse.ParseClock(w.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: startTime: %v", occupancy.ErrValidation, err)
	}
	end, err := parse.ParseClock(w.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: endTime: %v", occupancy.ErrValidation, err)
	}
	win := &occupancy.Window{Date: w.Date, Start: start, End: end}
	if err := win.Validate(); err != nil {
		return nil, err
	}
	return win, nil
}

func windowFromDomain(w *occupancy.Window) *windowDTO {
	if w == nil {
		return nil
	}
	return &windowDTO{Date: w.Date, StartTime: parse.FormatClock(w.Start), EndTime: parse.FormatClock(w.End)}
}

// createRecordRequest is the intake body shared by all families. Fields that
// do not apply to a family are rejected by the state machine.
type createRecordRequest struct {
	SubjectRef      string     `json:"subjectRef"`
	SubjectName     string     `json:"subjectName"`
	Unit            string     `json:"unit"`
	SpotID          string     `json:"spotId"`
	FacilityID      string     `json:"facilityId"`
	ScheduledWindow *windowDTO `json:"scheduledWindow"`
	Note            string     `json:"note"`
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	Actor           string     `json:"actor"`
}

func (r createRecordRequest) toIntake(family occupancy.Family, actor string) (occupancy.Intake, error) {
	in := occupancy.Intake{
		Family:       family,
		SubjectRef:   r.SubjectRef,
		SubjectName:  r.SubjectName,
		Unit:         r.Unit,
		Note:         r.Note,
		Method:       occupancy.CourierMethod(r.Method),
		InitialState: occupancy.State(r.Status),
		Actor:        actor,
	}
	switch {
	case r.SpotID != "" && r.FacilityID != "":
		return in, fmt.Errorf("%w: spotId and facilityId are mutually exclusive", occupancy.ErrValidation)
	case r.SpotID != "":
		in.Resource = occupancy.ResourceRef{Kind: occupancy.ResourceSpot, ID: r.SpotID}
	case r.FacilityID != "":
		in.Resource = occupancy.ResourceRef{Kind: occupancy.ResourceFacility, ID: r.FacilityID}
	}
	win, err := r.ScheduledWindow.toDomain()
	if err != nil {
		return in, err
	}
	in.Window = win
	return in, nil
}

// transitionRequest is the body of PATCH /{family}/{id}/status. Timestamp is
// accepted for compatibility and ignored; the server clock decides.
type transitionRequest struct {
	Status          string     `json:"status" binding:"required"`
	Actor           string     `json:"actor"`
	RejectionReason string     `json:"rejectionReason"`
	Note            string     `json:"note"`
	Timestamp       *time.Time `json:"timestamp"`
}

type recordResponse struct {
	ID              string     `json:"id"`
	Family          string     `json:"family"`
	Status          string     `json:"status"`
	SubjectRef      string     `json:"subjectRef,omitempty"`
	SubjectName     string     `json:"subjectName"`
	Unit            string     `json:"unit,omitempty"`
	SpotID          string     `json:"spotId,omitempty"`
	FacilityID      string     `json:"facilityId,omitempty"`
	ScheduledWindow *windowDTO `json:"scheduledWindow,omitempty"`
	EntryTime       *time.Time `json:"entryTime,omitempty"`
	ExitTime        *time.Time `json:"exitTime,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	StateChangedAt  time.Time  `json:"stateChangedAt"`
	Note            string     `json:"note,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	Method          string     `json:"method,omitempty"`
	LastActor       string     `json:"lastActor,omitempty"`
}

func newRecordResponse(r *occupancy.Record) recordResponse {
	resp := recordResponse{
		ID:              r.ID,
		Family:          r.Family.String(),
		Status:          r.State.String(),
		SubjectRef:      r.SubjectRef,
		SubjectName:     r.SubjectName,
		Unit:            r.Unit,
		ScheduledWindow: windowFromDomain(r.Window),
		EntryTime:       r.EntryTime,
		ExitTime:        r.ExitTime,
		CreatedAt:       r.CreatedAt,
		StateChangedAt:  r.StateChangedAt,
		Note:            r.Note,
		RejectionReason: r.RejectionReason,
		Method:          string(r.Method),
		LastActor:       r.LastActor,
	}
	switch r.Resource.Kind {
	case occupancy.ResourceSpot:
		resp.SpotID = r.Resource.ID
	case occupancy.ResourceFacility:
		resp.FacilityID = r.Resource.ID
	}
	return resp
}

// listResponse is a page of records plus stats over the unpaginated set.
type listResponse struct {
	Items    []recordResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Stats    map[string]int   `json:"stats"`
}

func newListResponse(p *store.Page) listResponse {
	items := make([]recordResponse, len(p.Items))
	for i, r := range p.Items {
		items[i] = newRecordResponse(r)
	}
	return listResponse{
		Items:    items,
		Total:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
		Stats:    flattenStats(p.Stats),
	}
}

// flattenStats renders per-state counts next to completedToday and total.
func flattenStats(s stats.Stats) map[string]int {
	out := make(map[string]int, len(s.ByState)+2)
	for state, n := range s.ByState {
		out[state.String()] = n
	}
	out["completedToday"] = s.CompletedToday
	out["total"] = s.Total
	return out
}

type transitionResponse struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Actor string    `json:"actor,omitempty"`
	At    time.Time `json:"at"`
}
