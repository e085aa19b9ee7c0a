package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"residence-occupancy-backend/internal/occupancy"
)

func visit(state occupancy.State, exit *time.Time) *occupancy.Record {
	return &occupancy.Record{Family: occupancy.FamilyVisit, State: state, ExitTime: exit}
}

func TestAggregate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 5, 1, 15, 0, 0, 0, loc)
	morning := time.Date(2024, 5, 1, 9, 30, 0, 0, loc)
	justAfterMidnight := time.Date(2024, 5, 1, 0, 5, 0, 0, loc)
	yesterday := time.Date(2024, 4, 30, 23, 55, 0, 0, loc)

	records := []*occupancy.Record{
		visit(occupancy.StateActive, nil),
		visit(occupancy.StateActive, nil),
		visit(occupancy.StateActive, nil),
		visit(occupancy.StatePending, nil),
		visit(occupancy.StatePending, nil),
		visit(occupancy.StateCompleted, &morning),
		visit(occupancy.StateCompleted, &justAfterMidnight),
		visit(occupancy.StateCompleted, &yesterday),
	}

	s := Aggregate(occupancy.FamilyVisit, records, now, loc)
	assert.Equal(t, 3, s.Count(occupancy.StateActive))
	assert.Equal(t, 2, s.Count(occupancy.StatePending))
	assert.Equal(t, 3, s.Count(occupancy.StateCompleted))
	assert.Equal(t, 0, s.Count(occupancy.StateCancelled))
	assert.Equal(t, 2, s.CompletedToday)
	assert.Equal(t, 8, s.Total)
}

func TestAggregate_CargoUsesDelivered(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	delivered := now.Add(-time.Hour)
	records := []*occupancy.Record{
		{Family: occupancy.FamilyCargo, State: occupancy.StateDelivered, ExitTime: &delivered},
		{Family: occupancy.FamilyCargo, State: occupancy.StateReturned, ExitTime: &delivered},
		{Family: occupancy.FamilyCargo, State: occupancy.StateReceived},
	}

	s := Aggregate(occupancy.FamilyCargo, records, now, nil)
	assert.Equal(t, 1, s.CompletedToday)
	assert.Equal(t, 1, s.Count(occupancy.StateReceived))
}

func TestAggregate_BookingsHaveNoCompletion(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := Aggregate(occupancy.FamilyBooking, []*occupancy.Record{
		{Family: occupancy.FamilyBooking, State: occupancy.StateConfirmed},
	}, now, time.UTC)
	assert.Equal(t, 0, s.CompletedToday)
	assert.Equal(t, 1, s.Count(occupancy.StateConfirmed))
}

func TestFromCounts(t *testing.T) {
	s := FromCounts(occupancy.FamilyCourier, map[occupancy.State]int{occupancy.StateInside: 4}, 1)
	assert.Equal(t, map[occupancy.State]int{
		occupancy.StatePending:   0,
		occupancy.StateInside:    4,
		occupancy.StateCompleted: 0,
	}, s.ByState)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.CompletedToday)
}

func TestOccupancyRate(t *testing.T) {
	testCases := []struct {
		occupied, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{10, 10, 100},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, OccupancyRate(tc.occupied, tc.total), "%d/%d", tc.occupied, tc.total)
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC) // 21:00 on May 1st locally
	start, end := DayBounds(now, loc)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
