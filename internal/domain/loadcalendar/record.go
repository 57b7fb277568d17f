// Package loadcalendar groups daily load records into match-to-match cycles
// and averages KPIs per relative day of the cycle.
package loadcalendar

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"
)

// DailyRecord is one day of load data for one player.
type DailyRecord struct {
	Date time.Time
	// MatchOffsetPlus counts days since the most recent match (0 on match days).
	MatchOffsetPlus int
	// MatchOffsetMinus counts days until the next match as a non-positive number.
	MatchOffsetMinus int
	// KPIs holds the metric values of the day. Absent, NaN and infinite values
	// are treated as missing.
	KPIs map[string]float64
}

// MatchWeekDuration is the length in days of the cycle containing the record.
func (r DailyRecord) MatchWeekDuration() int {
	minus := r.MatchOffsetMinus
	if minus < 0 {
		minus = -minus
	}
	return r.MatchOffsetPlus + minus
}

// IsMatchDay reports whether the record is a match day.
func (r DailyRecord) IsMatchDay() bool {
	return r.MatchOffsetPlus == 0
}

// Value returns the KPI value and whether it is usable.
func (r DailyRecord) Value(kpi string) (float64, bool) {
	v, ok := r.KPIs[kpi]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CycleDurations returns the distinct non-zero cycle lengths in ascending
// order, i.e. the valid selections for BuildCycleAverages.
func CycleDurations(records []DailyRecord) []int {
	out := lo.Uniq(lo.FilterMap(records, func(r DailyRecord, _ int) (int, bool) {
		d := r.MatchWeekDuration()
		return d, d != 0
	}))
	slices.Sort(out)
	return out
}

// KPINames returns the sorted union of KPI names present in records.
func KPINames(records []DailyRecord) []string {
	names := lo.Uniq(lo.FlatMap(records, func(r DailyRecord, _ int) []string {
		return lo.Keys(r.KPIs)
	}))
	slices.Sort(names)
	return names
}
