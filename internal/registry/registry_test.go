package registry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residence-occupancy-backend/config"
	"residence-occupancy-backend/internal/db"
	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/occupancy"
	"residence-occupancy-backend/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	quiet := logrus.New()
	quiet.SetLevel(logrus.WarnLevel)
	gdb, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}, quiet)
	require.NoError(t, err)
	sqlDB, _ := gdb.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return store.NewGormStore(gdb)
}

func TestCheckOperatingWindow(t *testing.T) {
	open := &model.Facility{ID: "gym", Status: model.FacilityOpen, OpensAt: "06:00", ClosesAt: "22:00"}
	w := func(start, end int) occupancy.Window {
		return occupancy.Window{Date: "2024-05-02", Start: start * 60, End: end * 60}
	}

	testCases := []struct {
		name     string
		facility *model.Facility
		window   occupancy.Window
		ok       bool
	}{
		{"inside hours", open, w(10, 11), true},
		{"touching both edges", open, w(6, 22), true},
		{"starts before opening", open, w(5, 7), false},
		{"ends after closing", open, w(21, 23), false},
		{"closed facility", &model.Facility{Status: model.FacilityClosed, OpensAt: "06:00", ClosesAt: "22:00"}, w(10, 11), false},
		{"under maintenance", &model.Facility{Status: model.FacilityMaintenance}, w(10, 11), false},
		{"unreadable hours fail closed", &model.Facility{Status: model.FacilityOpen, OpensAt: "six", ClosesAt: "22:00"}, w(10, 11), false},
		{"overnight hours fail closed", &model.Facility{Status: model.FacilityOpen, OpensAt: "22:00", ClosesAt: "02:00"}, w(23, 24), false},
		{"closing at midnight", &model.Facility{Status: model.FacilityOpen, OpensAt: "08:00", ClosesAt: "00:00"}, w(23, 24), true},
		{"no hours configured", &model.Facility{Status: model.FacilityOpen}, w(0, 24), true},
		{"unknown facility", nil, w(10, 11), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, IsWithinOperatingWindow(tc.facility, tc.window))
		})
	}
}

func TestRegistry_Resources(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertBuilding(ctx, model.Building{
		ID: "bldg-a", SiteID: "site-1", Name: "Block A",
		Spots: []model.ParkingSpot{
			{ID: "spot-1", Floor: -1, Code: "B1-001"},
			{ID: "spot-2", Floor: -1, Code: "B1-002"},
			{ID: "spot-3", Floor: -2, Code: "B2-001"},
		},
	}))
	require.NoError(t, s.UpsertFacilities(ctx, []model.Facility{
		{ID: "gym", SiteID: "site-1", Name: "Gym", Capacity: 4, Status: model.FacilityOpen},
	}))
	reg := New(s, time.Minute)

	res, err := reg.GetResource(ctx, occupancy.ResourceRef{Kind: occupancy.ResourceSpot, ID: "spot-2"})
	require.NoError(t, err)
	assert.Equal(t, "B1-002", res.Name)
	assert.Equal(t, 1, res.Capacity())

	res, err = reg.GetResource(ctx, occupancy.ResourceRef{Kind: occupancy.ResourceFacility, ID: "gym"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Capacity())

	_, err = reg.GetResource(ctx, occupancy.ResourceRef{Kind: occupancy.ResourceSpot, ID: "spot-9"})
	assert.ErrorIs(t, err, occupancy.ErrNotFound)
	_, err = reg.GetResource(ctx, occupancy.ResourceRef{Kind: "elevator", ID: "e1"})
	assert.ErrorIs(t, err, occupancy.ErrValidation)

	spots, err := reg.ListResourcesByScope(ctx, occupancy.ResourceSpot, "bldg-a")
	require.NoError(t, err)
	require.Len(t, spots, 3)
	assert.Equal(t, "B2-001", spots[0].Name, "lowest floor first")

	facilities, err := reg.ListResourcesByScope(ctx, occupancy.ResourceFacility, "site-1")
	require.NoError(t, err)
	require.Len(t, facilities, 1)

	summary, err := reg.BuildingOccupancy(ctx, "bldg-a")
	require.NoError(t, err)
	assert.Equal(t, OccupancySummary{BuildingID: "bldg-a", TotalSpots: 3}, summary)
}

func TestRegistry_EmptyBuildingHasZeroRate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertBuilding(ctx, model.Building{ID: "bldg-empty", SiteID: "site-1", Name: "Annex"}))

	summary, err := New(s, time.Minute).BuildingOccupancy(ctx, "bldg-empty")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalSpots)
	assert.Equal(t, 0, summary.OccupancyRate)
}

func TestRegistry_FacilityCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertFacilities(ctx, []model.Facility{
		{ID: "pool", SiteID: "site-1", Name: "Pool", Capacity: 1, Status: model.FacilityOpen},
	}))
	reg := New(s, time.Minute)

	f, err := reg.GetFacility(ctx, "pool")
	require.NoError(t, err)
	assert.Equal(t, model.FacilityOpen, f.Status)

	require.NoError(t, s.UpsertFacilities(ctx, []model.Facility{
		{ID: "pool", SiteID: "site-1", Name: "Pool", Capacity: 1, Status: model.FacilityClosed},
	}))

	f, err = reg.GetFacility(ctx, "pool")
	require.NoError(t, err)
	assert.Equal(t, model.FacilityOpen, f.Status, "served from cache")

	reg.Invalidate()
	f, err = reg.GetFacility(ctx, "pool")
	require.NoError(t, err)
	assert.Equal(t, model.FacilityClosed, f.Status)
}
