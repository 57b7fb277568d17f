// Package priority holds the individual development goals of a player.
package priority

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"
)

// Tracking states.
const (
	OnTrack  = "On Track"
	Achieved = "Achieved"
)

// Goal is one individual priority area.
type Goal struct {
	Priority        int       `json:"priority"`
	Category        string    `json:"category"`
	Area            string    `json:"area"`
	PerformanceType string    `json:"performance_type"`
	ReviewDate      time.Time `json:"review_date"`
	Tracking        string    `json:"tracking"`
	TargetDate      time.Time `json:"target_date"`
}

// Board is the goal list split by tracking state.
type Board struct {
	OnTrack  []Goal `json:"on_track"`
	Achieved []Goal `json:"achieved"`
}

// Split separates on-track from achieved goals, each ordered by priority.
// Goals with any other tracking value are left out.
func Split(goals []Goal) Board {
	byPriority := func(a, b Goal) int { return cmp.Compare(a.Priority, b.Priority) }
	b := Board{
		OnTrack:  lo.Filter(goals, func(g Goal, _ int) bool { return g.Tracking == OnTrack }),
		Achieved: lo.Filter(goals, func(g Goal, _ int) bool { return g.Tracking == Achieved }),
	}
	slices.SortStableFunc(b.OnTrack, byPriority)
	slices.SortStableFunc(b.Achieved, byPriority)
	return b
}
