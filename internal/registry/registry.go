package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/occupancy"
	"residence-occupancy-backend/internal/parse"
	"residence-occupancy-backend/internal/stats"
	"residence-occupancy-backend/internal/store"
)

// Resource is a registry entry referenced by occupancy records.
type Resource struct {
	Ref      occupancy.ResourceRef
	Name     string
	Spot     *model.ParkingSpot
	Facility *model.Facility
}

// Capacity is the number of concurrent holders the resource admits.
func (r *Resource) Capacity() int {
	if r.Facility != nil && r.Facility.Capacity > 0 {
		return r.Facility.Capacity
	}
	return 1
}

// OccupancySummary is the spot usage of a building.
type OccupancySummary struct {
	BuildingID    string `json:"buildingId"`
	TotalSpots    int    `json:"totalSpots"`
	OccupiedSpots int    `json:"occupiedSpots"`
	OccupancyRate int    `json:"occupancyRate"`
}

// Registry is the read model over buildings, spots and facilities.
// Facility data changes only on sync and is cached; spot occupancy is read live.
type Registry struct {
	store store.Store
	cache *cache.Cache
}

// New creates a registry whose facility cache entries live for ttl.
func New(s store.Store, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Registry{store: s, cache: cache.New(ttl, 2*ttl)}
}

// Invalidate drops every cached entry. Called after a registry sync.
func (r *Registry) Invalidate() {
	r.cache.Flush()
}

// GetResource resolves a reference to its registry entry.
func (r *Registry) GetResource(ctx context.Context, ref occupancy.ResourceRef) (*Resource, error) {
	switch ref.Kind {
	case occupancy.ResourceSpot:
		spot, err := r.store.GetSpot(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &Resource{Ref: ref, Name: spot.Code, Spot: spot}, nil
	case occupancy.ResourceFacility:
		f, err := r.GetFacility(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return &Resource{Ref: ref, Name: f.Name, Facility: f}, nil
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", occupancy.ErrValidation, ref.Kind)
	}
}

// ListResourcesByScope lists the spots of a building or the facilities of a site.
func (r *Registry) ListResourcesByScope(ctx context.Context, kind occupancy.ResourceKind, scope string) ([]Resource, error) {
	switch kind {
	case occupancy.ResourceSpot:
		b, err := r.store.GetBuilding(ctx, scope)
		if err != nil {
			return nil, err
		}
		out := make([]Resource, len(b.Spots))
		for i := range b.Spots {
			spot := b.Spots[i]
			out[i] = Resource{Ref: occupancy.ResourceRef{Kind: kind, ID: spot.ID}, Name: spot.Code, Spot: &spot}
		}
		return out, nil
	case occupancy.ResourceFacility:
		facilities, err := r.ListFacilities(ctx, scope)
		if err != nil {
			return nil, err
		}
		out := make([]Resource, len(facilities))
		for i := range facilities {
			f := facilities[i]
			out[i] = Resource{Ref: occupancy.ResourceRef{Kind: kind, ID: f.ID}, Name: f.Name, Facility: &f}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", occupancy.ErrValidation, kind)
	}
}

// GetFacility returns a facility, from cache when possible.
func (r *Registry) GetFacility(ctx context.Context, id string) (*model.Facility, error) {
	key := "facility:" + id
	if v, ok := r.cache.Get(key); ok {
		f := v.(model.Facility)
		return &f, nil
	}
	f, err := r.store.GetFacility(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, *f)
	return f, nil
}

// ListFacilities returns the facilities of a site, from cache when possible.
func (r *Registry) ListFacilities(ctx context.Context, siteID string) ([]model.Facility, error) {
	key := "facilities:" + siteID
	if v, ok := r.cache.Get(key); ok {
		return append([]model.Facility(nil), v.([]model.Facility)...), nil
	}
	list, err := r.store.ListFacilities(ctx, siteID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, append([]model.Facility(nil), list...))
	return list, nil
}

// GetBuilding returns a building with its spots and their live occupancy.
func (r *Registry) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	return r.store.GetBuilding(ctx, id)
}

// BuildingOccupancy summarises how many spots of a building are taken.
func (r *Registry) BuildingOccupancy(ctx context.Context, id string) (OccupancySummary, error) {
	occ, err := r.store.BuildingOccupancy(ctx, id)
	if err != nil {
		return OccupancySummary{}, err
	}
	return OccupancySummary{
		BuildingID:    occ.BuildingID,
		TotalSpots:    occ.Total,
		OccupiedSpots: occ.Occupied,
		OccupancyRate: stats.OccupancyRate(occ.Occupied, occ.Total),
	}, nil
}

// IsWithinOperatingWindow reports whether w may be booked on f.
func IsWithinOperatingWindow(f *model.Facility, w occupancy.Window) bool {
	return CheckOperatingWindow(f, w) == nil
}

// CheckOperatingWindow explains why w cannot be booked on f, or returns nil.
// It fails closed: a closed facility or unreadable hours reject every window.
// A facility with no hours configured is bookable around the clock.
func CheckOperatingWindow(f *model.Facility, w occupancy.Window) error {
	if f == nil {
		return fmt.Errorf("facility is unknown")
	}
	switch f.Status {
	case model.FacilityOpen, "":
	default:
		return fmt.Errorf("facility is %s", f.Status)
	}
	if f.OpensAt == "" && f.ClosesAt == "" {
		return nil
	}

	opens, err := parse.ParseClock(f.OpensAt)
	if err != nil {
		return fmt.Errorf("facility opening time is unreadable: %w", err)
	}
	closes, err := parse.ParseClock(f.ClosesAt)
	if err != nil {
		return fmt.Errorf("facility closing time is unreadable: %w", err)
	}
	if closes == 0 {
		closes = 24 * 60
	}
	if closes <= opens {
		return fmt.Errorf("facility hours %s-%s are not a same-day range", f.OpensAt, f.ClosesAt)
	}
	if w.Start < opens || w.End > closes {
		return fmt.Errorf("window is outside operating hours %s-%s", parse.FormatClock(opens), parse.FormatClock(closes))
	}
	return nil
}
