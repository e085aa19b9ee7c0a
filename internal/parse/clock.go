package parse

import (
	"fmt"
	"regexp"
	"strconv"
)

var clockRe = regexp.MustCompile(`^([01]?\d|2[0-4]):([0-5]\d)$`)

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is
// accepted as the end of the day; any other 24:xx is not.
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h == 24 && mm != 0 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + mm, nil
}

// FormatClock is the inverse of ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
