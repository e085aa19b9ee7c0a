package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"residence-occupancy-backend/internal/conflict"
	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/occupancy"
	"residence-occupancy-backend/internal/registry"
	"residence-occupancy-backend/internal/stats"
	"residence-occupancy-backend/internal/store"
)

// Engine runs intake, transitions and listing for every record family.
type Engine struct {
	store    store.Store
	registry *registry.Registry
	machine  *occupancy.Machine
	log      *logrus.Logger
	now      func() time.Time
	loc      *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// NewEngine wires the engine to its store and registry.
func NewEngine(s store.Store, reg *registry.Registry, log *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		registry: reg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	e.machine = occupancy.NewMachine(e.now)
	return e
}

// Create validates an intake, checks the referenced resource and persists
// the new record in its initial state.
func (e *Engine) Create(ctx context.Context, in occupancy.Intake) (*occupancy.Record, error) {
	rec, err := e.machine.Open(in)
	if err != nil {
		return nil, err
	}

	if !rec.Resource.IsZero() {
		res, err := e.resolve(ctx, rec.Resource)
		if err != nil {
			return nil, err
		}
		if rec.Family == occupancy.FamilyBooking {
			if err := e.checkBooking(ctx, rec, res.Facility, ""); err != nil {
				return nil, err
			}
		}
		if rec.Resource.IsDiscrete() && rec.Family.Claims(rec.State) {
			if err := e.checkSpotFree(ctx, rec.Resource, ""); err != nil {
				return nil, err
			}
		}
	}

	created, err := e.store.CreateRecord(ctx, rec)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"record_id": created.ID,
		"family":    created.Family,
		"state":     created.State,
		"resource":  created.Resource.String(),
		"actor":     created.LastActor,
	}).Info("Record created")
	return created, nil
}

// Get loads a record of the given family.
func (e *Engine) Get(ctx context.Context, family occupancy.Family, id string) (*occupancy.Record, error) {
	return e.store.GetRecord(ctx, family, id)
}

// Transition moves a record to target. Repeating the current state is a
// successful no-op that returns the stored record untouched.
func (e *Engine) Transition(ctx context.Context, family occupancy.Family, id string, target occupancy.State, actor string, tc occupancy.TransitionContext) (*occupancy.Record, error) {
	rec, err := e.store.GetRecord(ctx, family, id)
	if err != nil {
		return nil, err
	}

	next, changed, err := e.machine.Transition(rec, target, actor, tc)
	if err != nil {
		return nil, err
	}
	if !changed {
		return rec, nil
	}

	if family == occupancy.FamilyBooking && target == occupancy.StateConfirmed {
		res, err := e.resolve(ctx, rec.Resource)
		if err != nil {
			return nil, err
		}
		if err := e.checkBooking(ctx, next, res.Facility, rec.ID); err != nil {
			return nil, err
		}
	}
	if next.Resource.IsDiscrete() && occupancy.OccupiesResource(family, target) {
		if err := e.checkSpotFree(ctx, next.Resource, rec.ID); err != nil {
			return nil, err
		}
	}

	if err := e.store.ApplyTransition(ctx, rec.State, next); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"record_id": next.ID,
		"family":    family,
		"from":      rec.State,
		"to":        next.State,
		"actor":     actor,
	}).Info("Record transitioned")
	return next, nil
}

// List returns one page of records with stats over the whole filtered set.
func (e *Engine) List(ctx context.Context, family occupancy.Family, filter store.Filter) (*store.Page, error) {
	start, end := stats.DayBounds(e.now(), e.loc)
	return e.store.ListRecords(ctx, family, filter, store.Day{Start: start, End: end})
}

// History returns the transition trail of a record.
func (e *Engine) History(ctx context.Context, family occupancy.Family, id string) ([]model.OccupancyTransition, error) {
	if _, err := e.store.GetRecord(ctx, family, id); err != nil {
		return nil, err
	}
	return e.store.ListTransitions(ctx, id)
}

// resolve looks a resource up in the registry. An unknown resource in a
// request is a validation problem, not a missing record.
func (e *Engine) resolve(ctx context.Context, ref occupancy.ResourceRef) (*registry.Resource, error) {
	res, err := e.registry.GetResource(ctx, ref)
	if errors.Is(err, occupancy.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown resource %s", occupancy.ErrValidation, ref)
	}
	return res, err
}

func (e *Engine) checkBooking(ctx context.Context, rec *occupancy.Record, facility *model.Facility, excludeID string) error {
	if rec.Window == nil {
		return fmt.Errorf("%w: a booking needs a scheduled window", occupancy.ErrValidation)
	}
	if err := registry.CheckOperatingWindow(facility, *rec.Window); err != nil {
		return &occupancy.ConflictError{Cause: occupancy.CauseUnavailable, Resource: rec.Resource, Requested: rec.Window, Reason: err.Error()}
	}

	existing, err := e.store.ListBookingWindows(ctx, facility.ID, rec.Window.Date, excludeID)
	if err != nil {
		return err
	}
	result := conflict.Check(*rec.Window, existing, facility.Capacity)
	if result.Conflict {
		e.log.WithFields(logrus.Fields{
			"facility": facility.ID,
			"window":   rec.Window.String(),
			"peak":     result.Peak,
			"capacity": facility.Capacity,
		}).Info("Booking rejected by conflict check")
		return &occupancy.ConflictError{
			Cause:     occupancy.CauseOverlap,
			Resource:  rec.Resource,
			Requested: rec.Window,
			Windows:   conflict.Windows(result.Overlapping),
			Reason:    fmt.Sprintf("capacity of %d is already taken", max(facility.Capacity, 1)),
		}
	}
	return nil
}

func (e *Engine) checkSpotFree(ctx context.Context, ref occupancy.ResourceRef, excludeID string) error {
	holder, err := e.store.FindClaim(ctx, ref, excludeID)
	if err != nil {
		return err
	}
	if holder != nil {
		return &occupancy.ConflictError{Cause: occupancy.CauseOccupied, Resource: ref, OccupantID: holder.ID, Reason: "spot is already claimed"}
	}
	return nil
}
