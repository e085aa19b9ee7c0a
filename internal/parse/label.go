package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	seqRe   = regexp.MustCompile(`[-_ ](\d+)$`)
	// B2, P1 (basement/parking below ground), 3F, L3, F3, or a bare number.
	floorRe = regexp.MustCompile(`(?i)^(?:(B|P)(\d+)|(?:L|F)(\d+)|(\d+)\s*F?)$`)
)

// ParsedSpot holds the structured data parsed from a parking spot label.
type ParsedSpot struct {
	Code  string
	Floor int
	Seq   int
}

// ParseSpotLabel extracts floor and sequence number from a spot label such as
// "B2-017" or "3F-12". Basement floors are negative. floorHint is used when
// the label itself carries no floor.
func ParseSpotLabel(raw string, floorHint string) (ParsedSpot, error) {
	// 0) normalise: upper case, collapse whitespace, drop "#"
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "#", "")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return ParsedSpot{}, fmt.Errorf("empty spot label")
	}
	code := strings.ReplaceAll(s, " ", "")

	// 1) trailing sequence number
	seq := 0
	head := s
	if loc := seqRe.FindStringSubmatchIndex(s); loc != nil {
		if n, err := strconv.Atoi(s[loc[2]:loc[3]]); err == nil {
			seq = n
			head = strings.TrimSpace(s[:loc[0]])
		}
	}

	// 2) floor from what is left
	if m := floorRe.FindStringSubmatch(head); m != nil && head != s {
		return ParsedSpot{Code: code, Floor: floorFromMatch(m), Seq: seq}, nil
	}

	// 3) fall back to the hint
	if floorHint != "" {
		if m := floorRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(floorHint))); m != nil {
			if head == s {
				// the whole label is the spot number when it is numeric
				if n, err := strconv.Atoi(s); err == nil {
					seq = n
				}
			}
			return ParsedSpot{Code: code, Floor: floorFromMatch(m), Seq: seq}, nil
		}
	}

	return ParsedSpot{}, fmt.Errorf("unable to parse floor from spot label: %q", raw)
}

func floorFromMatch(m []string) int {
	switch {
	case m[2] != "":
		n, _ := strconv.Atoi(m[2])
		return -n
	case m[3] != "":
		n, _ := strconv.Atoi(m[3])
		return n
	default:
		n, _ := strconv.Atoi(m[4])
		return n
	}
}
