package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Missing is the marker used for absent or unparseable numeric values.
var Missing = math.NaN()

// IsMissing reports whether v is the missing marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// ParseNumber coerces s to a float. Blank or malformed input yields Missing.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return Missing
	}
	return v
}

// ParseAttendance coerces locale formatted counts such as "1.045.246" or
// "3,587,538". Thousands separators are stripped before parsing; anything
// that still fails to parse is Missing, never zero.
func ParseAttendance(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', ' ', '\'', '\u00a0', '_':
			return -1
		}
		return r
	}, s)
	return ParseNumber(cleaned)
}

// ParseYear coerces s to a year. Values like "1930.0" are accepted.
func ParseYear(s string) (int, bool) {
	v := ParseNumber(s)
	if IsMissing(v) || v != math.Trunc(v) || v <= 0 {
		return 0, false
	}
	return int(v), true
}

// ParseID coerces a numeric identifier; 0 means missing.
func ParseID(s string) int64 {
	v := ParseNumber(s)
	if IsMissing(v) || v != math.Trunc(v) {
		return 0
	}
	return int64(v)
}

var goalEvent = regexp.MustCompile(`G\d+`)

// HasGoalEvent reports whether an event string records at least one goal,
// i.e. a G marker followed by a minute such as "G43'".
func HasGoalEvent(event string) bool {
	return goalEvent.MatchString(event)
}
