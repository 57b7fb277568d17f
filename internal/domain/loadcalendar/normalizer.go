package loadcalendar

import (
	"time"
)

// Group holds the averages of one label.
type Group struct {
	Label Label `json:"label"`
	// Rows is the number of rows mapped to the label, overlaps included.
	Rows int `json:"rows"`
	// Means maps KPI name to its average. KPIs without a single usable value
	// in the group are absent.
	Means map[string]float64 `json:"means"`
}

// Mean returns the average of kpi and false when it is undefined.
func (g Group) Mean(kpi string) (float64, bool) {
	v, ok := g.Means[kpi]
	return v, ok
}

// Result is the aggregated table for one cycle length.
type Result struct {
	Length int      `json:"length"`
	KPIs   []string `json:"kpis"`
	Groups []Group  `json:"groups"`
	// Matches is the number of distinct match days that contributed to the
	// "match" label.
	Matches int `json:"matches"`
}

// Empty reports whether there was nothing to aggregate for the selection.
func (r Result) Empty() bool {
	return len(r.Groups) == 0
}

// Group returns the group for label l.
func (r Result) Group(l Label) (Group, bool) {
	for _, g := range r.Groups {
		if g.Label == l {
			return g, true
		}
	}
	return Group{}, false
}

type accumulator struct {
	rows   int
	sums   map[string]float64
	counts map[string]int
}

// BuildCycleAverages averages KPIs per relative cycle day for cycles of the
// given length. records must be one player's season sorted by date.
//
// Rows are drawn from three views that are concatenated, not de-duplicated:
//   - every record whose own cycle length equals length, labeled by its
//     forward offset ("match" on match days);
//   - match days with a predecessor whose successor has that cycle length,
//     labeled "match";
//   - match days whose predecessor has that cycle length, labeled
//     "next match".
//
// Neighbour lengths are read from the full sequence. A length that no record
// has yields an empty Result.
func BuildCycleAverages(records []DailyRecord, length int, opts ...Option) Result {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	res := Result{Length: length, KPIs: []string{}, Groups: []Group{}}
	if length <= 0 || len(records) == 0 {
		return res
	}

	durations := make([]int, len(records))
	selected := false
	for i, r := range records {
		durations[i] = r.MatchWeekDuration()
		if durations[i] == length {
			selected = true
		}
	}
	if !selected {
		return res
	}

	kpis := o.kpis
	if kpis == nil {
		kpis = KPINames(records)
	}
	res.KPIs = kpis

	order := OrderedLabels(length)
	index := make(map[Label]int, len(order))
	for i, l := range order {
		index[l] = i
	}
	accs := make([]accumulator, len(order))
	matchDays := make(map[string]struct{})

	add := func(r DailyRecord, l Label) {
		i, ok := index[l]
		if !ok {
			return
		}
		a := &accs[i]
		if a.sums == nil {
			a.sums = make(map[string]float64, len(kpis))
			a.counts = make(map[string]int, len(kpis))
		}
		a.rows++
		for _, k := range kpis {
			if v, ok := r.Value(k); ok {
				a.sums[k] += v
				a.counts[k]++
			}
		}
		if l == Match {
			matchDays[r.Date.Format(time.DateOnly)] = struct{}{}
		}
	}

	last := len(records) - 1
	for i, r := range records {
		if durations[i] != length {
			continue
		}
		if r.IsMatchDay() {
			add(r, Match)
		} else {
			add(r, Day(r.MatchOffsetPlus))
		}
	}
	for i, r := range records {
		if r.IsMatchDay() && i > 0 && i < last && durations[i+1] == length {
			add(r, Match)
		}
	}
	for i, r := range records {
		if r.IsMatchDay() && i > 0 && durations[i-1] == length {
			add(r, NextMatch)
		}
	}

	for i, l := range order {
		a := accs[i]
		if a.rows == 0 {
			continue
		}
		means := make(map[string]float64, len(a.counts))
		for k, n := range a.counts {
			means[k] = a.sums[k] / float64(n)
		}
		res.Groups = append(res.Groups, Group{Label: l, Rows: a.rows, Means: means})
	}
	res.Matches = len(matchDays)
	return res
}
