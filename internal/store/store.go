package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"residence-occupancy-backend/internal/conflict"
	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/occupancy"
	"residence-occupancy-backend/internal/stats"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateRecord(ctx context.Context, rec *occupancy.Record) (*occupancy.Record, error)
	GetRecord(ctx context.Context, family occupancy.Family, id string) (*occupancy.Record, error)
	ApplyTransition(ctx context.Context, prev occupancy.State, next *occupancy.Record) error
	ListRecords(ctx context.Context, family occupancy.Family, filter Filter, today Day) (*Page, error)
	ListBookingWindows(ctx context.Context, facilityID, date, excludeID string) ([]conflict.Booking, error)
	FindClaim(ctx context.Context, ref occupancy.ResourceRef, excludeID string) (*occupancy.Record, error)
	ListTransitions(ctx context.Context, recordID string) ([]model.OccupancyTransition, error)

	UpsertFacilities(ctx context.Context, facilities []model.Facility) error
	UpsertBuilding(ctx context.Context, building model.Building) error
	GetFacility(ctx context.Context, id string) (*model.Facility, error)
	ListFacilities(ctx context.Context, siteID string) ([]model.Facility, error)
	GetBuilding(ctx context.Context, id string) (*model.Building, error)
	GetSpot(ctx context.Context, id string) (*model.ParkingSpot, error)
	BuildingOccupancy(ctx context.Context, buildingID string) (Occupancy, error)
}

// Day is the half-open [Start, End) range counted as "today".
type Day struct {
	Start time.Time
	End   time.Time
}

// Page is one page of a filtered list plus stats over the whole filtered set.
type Page struct {
	Items    []*occupancy.Record
	Total    int
	Page     int
	PageSize int
	Stats    stats.Stats
}

// Occupancy is the spot usage of one building.
type Occupancy struct {
	BuildingID string
	Total      int
	Occupied   int
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func repoErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", occupancy.ErrRepository, op, err)
}

func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %q", occupancy.ErrNotFound, what, id)
}

// passThrough keeps domain errors raised inside a transaction intact and
// wraps everything else as a repository failure.
func passThrough(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, occupancy.ErrNotFound) ||
		errors.Is(err, occupancy.ErrStaleState) ||
		errors.Is(err, occupancy.ErrResourceConflict) ||
		errors.Is(err, occupancy.ErrRepository) {
		return err
	}
	return repoErr(op, err)
}
