package store

import (
	"time"

	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/occupancy"
)

func toModel(r *occupancy.Record) model.OccupancyRecord {
	m := model.OccupancyRecord{
		ID:              r.ID,
		Family:          string(r.Family),
		State:           string(r.State),
		ResourceKind:    string(r.Resource.Kind),
		ResourceID:      r.Resource.ID,
		SubjectRef:      r.SubjectRef,
		SubjectName:     r.SubjectName,
		Unit:            r.Unit,
		EntryTime:       utcPtr(r.EntryTime),
		ExitTime:        utcPtr(r.ExitTime),
		Note:            r.Note,
		RejectionReason: r.RejectionReason,
		Method:          string(r.Method),
		LastActor:       r.LastActor,
		CreatedAt:       r.CreatedAt.UTC(),
		StateChangedAt:  r.StateChangedAt.UTC(),
	}
	if r.Window != nil {
		start, end := r.Window.Start, r.Window.End
		m.WindowDate = r.Window.Date
		m.WindowStart = &start
		m.WindowEnd = &end
	}
	return m
}

func toDomain(m model.OccupancyRecord) *occupancy.Record {
	r := &occupancy.Record{
		ID:              m.ID,
		Family:          occupancy.Family(m.Family),
		State:           occupancy.State(m.State),
		Resource:        occupancy.ResourceRef{Kind: occupancy.ResourceKind(m.ResourceKind), ID: m.ResourceID},
		SubjectRef:      m.SubjectRef,
		SubjectName:     m.SubjectName,
		Unit:            m.Unit,
		CreatedAt:       m.CreatedAt.UTC(),
		StateChangedAt:  m.StateChangedAt.UTC(),
		EntryTime:       utcPtr(m.EntryTime),
		ExitTime:        utcPtr(m.ExitTime),
		Note:            m.Note,
		RejectionReason: m.RejectionReason,
		Method:          occupancy.CourierMethod(m.Method),
		LastActor:       m.LastActor,
	}
	if m.WindowDate != "" && m.WindowStart != nil && m.WindowEnd != nil {
		r.Window = &occupancy.Window{Date: m.WindowDate, Start: *m.WindowStart, End: *m.WindowEnd}
	}
	return r
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
