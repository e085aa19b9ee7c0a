package conflict

import (
	"sort"

	"residence-occupancy-backend/internal/occupancy"
)

// Booking is an existing reservation considered by the checker.
type Booking struct {
	ID     string
	State  occupancy.State
	Window occupancy.Window
}

// Result reports the outcome of a check.
type Result struct {
	Conflict bool
	// Overlapping holds every claiming booking whose window intersects the
	// candidate, in start order.
	Overlapping []Booking
	// Peak is the highest number of existing bookings in use at the same
	// minute inside the candidate window.
	Peak int
}

// Overlaps reports whether the half-open windows [a.Start,a.End) and
// [b.Start,b.End) intersect on the same date. Touching ends do not overlap.
func Overlaps(a, b occupancy.Window) bool {
	return a.Date == b.Date && a.Start < b.End && b.Start < a.End
}

// Check decides whether candidate can be added next to existing for a
// facility that admits capacity concurrent bookings. Only pending and
// confirmed bookings take part; capacity below 1 is treated as 1.
func Check(candidate occupancy.Window, existing []Booking, capacity int) Result {
	if capacity < 1 {
		capacity = 1
	}

	var overlapping []Booking
	for _, b := range existing {
		if !occupancy.FamilyBooking.Claims(b.State) {
			continue
		}
		if Overlaps(candidate, b.Window) {
			overlapping = append(overlapping, b)
		}
	}
	sort.SliceStable(overlapping, func(i, j int) bool {
		return overlapping[i].Window.Start < overlapping[j].Window.Start
	})

	peak := peakConcurrency(candidate, overlapping)
	return Result{
		Conflict:    peak+1 > capacity,
		Overlapping: overlapping,
		Peak:        peak,
	}
}

// Windows extracts the windows of the given bookings.
func Windows(bookings []Booking) []occupancy.Window {
	out := make([]occupancy.Window, len(bookings))
	for i, b := range bookings {
		out[i] = b.Window
	}
	return out
}

type edge struct {
	at    int
	delta int
}

// peakConcurrency sweeps the booking boundaries clipped to the candidate
// window. Ends sort before starts at the same minute so back-to-back
// bookings never count as concurrent.
func peakConcurrency(candidate occupancy.Window, bookings []Booking) int {
	edges := make([]edge, 0, len(bookings)*2)
	for _, b := range bookings {
		start := max(b.Window.Start, candidate.Start)
		end := min(b.Window.End, candidate.End)
		if start >= end {
			continue
		}
		edges = append(edges, edge{at: start, delta: 1}, edge{at: end, delta: -1})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at != edges[j].at {
			return edges[i].at < edges[j].at
		}
		return edges[i].delta < edges[j].delta
	})

	current, peak := 0, 0
	for _, e := range edges {
		current += e.delta
		if current > peak {
			peak = current
		}
	}
	return peak
}
