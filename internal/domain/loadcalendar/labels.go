package loadcalendar

import (
	"fmt"
	"strconv"
)

type labelKind uint8

const (
	kindMatch labelKind = iota
	kindDay
	kindNextMatch
)

// Label is the position of a day inside a cycle: the match itself, a day
// index counted forward from it, or the following match.
type Label struct {
	kind labelKind
	day  int
}

// Match and NextMatch are the two named labels.
var (
	Match     = Label{kind: kindMatch}
	NextMatch = Label{kind: kindNextMatch}
)

// Day returns the label of the n-th day after a match.
func Day(n int) Label {
	return Label{kind: kindDay, day: n}
}

// DayIndex returns the day index and true for day labels.
func (l Label) DayIndex() (int, bool) {
	return l.day, l.kind == kindDay
}

func (l Label) String() string {
	switch l.kind {
	case kindMatch:
		return "match"
	case kindNextMatch:
		return "next match"
	default:
		return strconv.Itoa(l.day)
	}
}

// MarshalText renders the label the way charts display it.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses "match", "next match" or a positive day index.
func (l *Label) UnmarshalText(b []byte) error {
	s := string(b)
	switch s {
	case "match":
		*l = Match
		return nil
	case "next match":
		*l = NextMatch
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid cycle label %q", s)
	}
	*l = Day(n)
	return nil
}

// OrderedLabels returns the display order for a cycle of the given length:
// match, 1 .. length-1, next match. A non-positive length has no labels.
func OrderedLabels(length int) []Label {
	if length <= 0 {
		return nil
	}
	out := make([]Label, 0, length+1)
	out = append(out, Match)
	for i := 1; i < length; i++ {
		out = append(out, Day(i))
	}
	return append(out, NextMatch)
}
