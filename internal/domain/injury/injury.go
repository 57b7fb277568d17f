// Package injury groups a player's injury history by injury type.
package injury

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// DateLayout is the date format of injury listings, e.g. "Jan 2, 2006".
const DateLayout = "Jan 2, 2006"

// NotAvailable marks an absent games-missed value.
const NotAvailable = "N/A"

// Record is one injury.
type Record struct {
	Season      string    `json:"season"`
	Injury      string    `json:"injury"`
	From        time.Time `json:"from,omitzero"`
	Until       time.Time `json:"until,omitzero"`
	Days        string    `json:"days"`
	GamesMissed string    `json:"games_missed"`
}

// ParseDate parses a listing date. Unparsable input yields the zero time.
func ParseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Group is every occurrence of one injury type.
type Group struct {
	Injury  string   `json:"injury"`
	Count   int      `json:"count"`
	Records []Record `json:"records"`
}

// GroupByType groups records by injury, most frequent first with ties by
// name. Records of a group are newest first; undated records go last.
func GroupByType(records []Record) []Group {
	byType := lo.GroupBy(records, func(r Record) string { return r.Injury })
	groups := make([]Group, 0, len(byType))
	for name, rows := range byType {
		rows = slices.Clone(rows)
		slices.SortStableFunc(rows, func(a, b Record) int {
			switch {
			case a.From.IsZero() && b.From.IsZero():
				return 0
			case a.From.IsZero():
				return 1
			case b.From.IsZero():
				return -1
			}
			return b.From.Compare(a.From)
		})
		groups = append(groups, Group{Injury: name, Count: len(rows), Records: rows})
	}
	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Injury, b.Injury)
	})
	return groups
}
