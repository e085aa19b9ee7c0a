package stats

import (
	"math"
	"time"

	"residence-occupancy-backend/internal/occupancy"
)

// Stats summarises a filtered set of records of one family.
type Stats struct {
	Total          int                     `json:"total"`
	ByState        map[occupancy.State]int `json:"byState"`
	CompletedToday int                     `json:"completedToday"`
}

// Count returns the number of records in s.
func (s Stats) Count(state occupancy.State) int { return s.ByState[state] }

// FromCounts builds Stats from per-state counts produced by a GROUP BY query.
// Every state of the family is present in the result, zero when absent.
func FromCounts(f occupancy.Family, counts map[occupancy.State]int, completedToday int) Stats {
	out := Stats{ByState: make(map[occupancy.State]int, len(f.States())), CompletedToday: completedToday}
	for _, s := range f.States() {
		out.ByState[s] = 0
	}
	for s, n := range counts {
		out.ByState[s] += n
		out.Total += n
	}
	return out
}

// Aggregate computes Stats over an in-memory set. completedToday counts
// records in the family's completion state whose exit time falls within the
// local day containing now.
func Aggregate(f occupancy.Family, records []*occupancy.Record, now time.Time, loc *time.Location) Stats {
	counts := make(map[occupancy.State]int)
	completed := 0
	start, end := DayBounds(now, loc)
	done := f.CompletionState()
	for _, r := range records {
		if r == nil {
			continue
		}
		counts[r.State]++
		if done != "" && r.State == done && r.ExitTime != nil &&
			!r.ExitTime.Before(start) && r.ExitTime.Before(end) {
			completed++
		}
	}
	return FromCounts(f, counts, completed)
}

// DayBounds returns local midnight of the day containing now and the
// following midnight. A nil location means UTC.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// OccupancyRate is occupied/total as a rounded percentage, 0 when total is 0.
func OccupancyRate(occupied, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(occupied) * 100 / float64(total)))
}
