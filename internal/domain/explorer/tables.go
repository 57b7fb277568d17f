package explorer

import (
	"math"

	"github.com/samber/lo"

	"github.com/okian/matchload/internal/domain/capability"
	"github.com/okian/matchload/internal/domain/gps"
)

// GPSTable classifies every GPS KPI of sessions against the column's own
// spread.
func GPSTable(sessions []gps.Session) Table {
	keys := gps.FeatureKeys()
	stats := lo.Map(keys, func(k string, _ int) ColumnStats {
		values := lo.FilterMap(sessions, func(s gps.Session, _ int) (float64, bool) {
			return s.Metric(k)
		})
		return Stats(k, values)
	})

	t := Table{
		Columns: append([]string{"season", "date", "opposition", "md_plus_code", "md_minus_code"}, keys...),
		Stats:   stats,
		Rows:    make([]Row, 0, len(sessions)),
	}
	for _, s := range sessions {
		r := Row{
			Values: map[string]any{
				"season":        s.Season,
				"date":          s.Date.Format("2006-01-02"),
				"opposition":    s.OppositionFull,
				"md_plus_code":  s.MDPlusCode,
				"md_minus_code": s.MDMinusCode,
			},
			Cells: make(map[string]Cell, len(keys)),
		}
		for _, st := range stats {
			v, ok := s.Metric(st.Column)
			if !ok {
				r.Values[st.Column] = nil
				continue
			}
			r.Values[st.Column] = v
			if c := st.Classify(v); c.Level != Normal {
				r.Cells[st.Column] = c
			}
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// CapabilityTable classifies benchmark percentiles of tests.
func CapabilityTable(tests []capability.Test) Table {
	t := Table{
		Columns: []string{"date", "movement", "quality", "expression", "benchmark"},
		Rows:    make([]Row, 0, len(tests)),
	}
	for _, c := range tests {
		r := Row{
			Values: map[string]any{
				"date":       c.Date.Format("2006-01-02"),
				"movement":   c.Movement,
				"quality":    c.Quality,
				"expression": c.Expression,
				"benchmark":  nil,
			},
			Cells: map[string]Cell{},
		}
		b := math.NaN()
		if c.Benchmark != nil {
			b = *c.Benchmark
			r.Values["benchmark"] = b
		}
		if cell := ClassifyBenchmark(b); cell.Level != Normal {
			r.Cells["benchmark"] = cell
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}
