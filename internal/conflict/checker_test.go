package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"residence-occupancy-backend/internal/occupancy"
)

func window(start, end string) occupancy.Window {
	return occupancy.Window{Date: "2024-06-01", Start: clock(start), End: clock(end)}
}

func clock(hhmm string) int {
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return h*60 + m
}

func TestCheck(t *testing.T) {
	confirmed := Booking{ID: "b1", State: occupancy.StateConfirmed, Window: window("10:00", "11:00")}

	testCases := []struct {
		name      string
		candidate occupancy.Window
		existing  []Booking
		capacity  int
		conflict  bool
		overlaps  int
	}{
		{
			name:      "overlapping a confirmed booking",
			candidate: window("10:30", "11:30"),
			existing:  []Booking{confirmed},
			capacity:  1,
			conflict:  true,
			overlaps:  1,
		},
		{
			name:      "back-to-back is allowed",
			candidate: window("11:00", "12:00"),
			existing:  []Booking{confirmed},
			capacity:  1,
			conflict:  false,
		},
		{
			name:      "ending exactly when another starts is allowed",
			candidate: window("09:00", "10:00"),
			existing:  []Booking{confirmed},
			capacity:  1,
		},
		{
			name:      "pending bookings also block",
			candidate: window("10:15", "10:45"),
			existing:  []Booking{{ID: "b2", State: occupancy.StatePending, Window: window("10:00", "11:00")}},
			capacity:  1,
			conflict:  true,
			overlaps:  1,
		},
		{
			name:      "cancelled bookings are ignored",
			candidate: window("10:15", "10:45"),
			existing:  []Booking{{ID: "b3", State: occupancy.StateCancelled, Window: window("10:00", "11:00")}},
			capacity:  1,
		},
		{
			name:      "other dates are ignored",
			candidate: occupancy.Window{Date: "2024-06-02", Start: clock("10:00"), End: clock("11:00")},
			existing:  []Booking{confirmed},
			capacity:  1,
		},
		{
			name:      "capacity admits concurrent bookings",
			candidate: window("10:30", "11:30"),
			existing:  []Booking{confirmed},
			capacity:  2,
			overlaps:  1,
		},
		{
			name:      "capacity exhausted",
			candidate: window("10:30", "11:30"),
			existing: []Booking{
				confirmed,
				{ID: "b4", State: occupancy.StatePending, Window: window("10:45", "12:00")},
			},
			capacity: 2,
			conflict: true,
			overlaps: 2,
		},
		{
			name:      "overlaps that never coexist fit a capacity of two",
			candidate: window("09:00", "13:00"),
			existing: []Booking{
				{ID: "b5", State: occupancy.StateConfirmed, Window: window("09:00", "10:00")},
				{ID: "b6", State: occupancy.StateConfirmed, Window: window("10:00", "11:00")},
				{ID: "b7", State: occupancy.StateConfirmed, Window: window("11:00", "12:00")},
			},
			capacity: 2,
			overlaps: 3,
		},
		{
			name:      "zero capacity behaves as single occupancy",
			candidate: window("10:30", "11:30"),
			existing:  []Booking{confirmed},
			capacity:  0,
			conflict:  true,
			overlaps:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Check(tc.candidate, tc.existing, tc.capacity)
			assert.Equal(t, tc.conflict, res.Conflict)
			assert.Len(t, res.Overlapping, tc.overlaps)
		})
	}
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(window("10:00", "11:00"), window("10:59", "12:00")))
	assert.False(t, Overlaps(window("10:00", "11:00"), window("11:00", "12:00")))
	assert.True(t, Overlaps(window("10:00", "12:00"), window("10:30", "11:00")))
}
