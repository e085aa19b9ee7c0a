package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpotLabel(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		floorHint string
		expected  ParsedSpot
		expectErr bool
	}{
		{
			name:     "Basement level",
			raw:      "B2-017",
			expected: ParsedSpot{Code: "B2-017", Floor: -2, Seq: 17},
		},
		{
			name:     "Floor suffix",
			raw:      "3F-12",
			expected: ParsedSpot{Code: "3F-12", Floor: 3, Seq: 12},
		},
		{
			name:     "Level prefix in lower case",
			raw:      "l4-7",
			expected: ParsedSpot{Code: "L4-7", Floor: 4, Seq: 7},
		},
		{
			name:     "Hash and spaces",
			raw:      " B1 # 005 ",
			expected: ParsedSpot{Code: "B1005", Floor: -1, Seq: 5},
		},
		{
			name:      "Bare number uses hint",
			raw:       "12",
			floorHint: "B1",
			expected:  ParsedSpot{Code: "12", Floor: -1, Seq: 12},
		},
		{
			name:      "Lettered bay uses hint",
			raw:       "A-05",
			floorHint: "2",
			expected:  ParsedSpot{Code: "A-05", Floor: 2, Seq: 5},
		},
		{
			name:      "Label floor wins over hint",
			raw:       "B2-017",
			floorHint: "1",
			expected:  ParsedSpot{Code: "B2-017", Floor: -2, Seq: 17},
		},
		{
			name:      "No floor anywhere",
			raw:       "A-05",
			expectErr: true,
		},
		{
			name:      "Invalid hint",
			raw:       "VISITOR",
			floorHint: "roof",
			expectErr: true,
		},
		{
			name:      "Empty label",
			raw:       "  ",
			floorHint: "1",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseSpotLabel(tc.raw, tc.floorHint)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	testCases := []struct {
		in        string
		want      int
		expectErr bool
	}{
		{in: "00:00", want: 0},
		{in: "07:05", want: 7*60 + 5},
		{in: "7:05", want: 7*60 + 5},
		{in: "23:59", want: 23*60 + 59},
		{in: "24:00", want: 24 * 60},
		{in: "24:01", expectErr: true},
		{in: "25:00", expectErr: true},
		{in: "10:60", expectErr: true},
		{in: "1000", expectErr: true},
		{in: "", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.in, FormatClock(got)[5-len(tc.in):])
		})
	}
}
