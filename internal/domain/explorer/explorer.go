// Package explorer flags outlying values in tabular views: GPS columns
// against their own mean and standard deviation, capability benchmarks
// against fixed percentiles.
package explorer

import (
	"math"
	"strings"
)

// Level is where a value falls relative to its bounds.
type Level string

// Levels.
const (
	Normal Level = "normal"
	High   Level = "high"
	Low    Level = "low"
)

// Verdict says whether a flagged value is desirable.
type Verdict string

// Verdicts.
const (
	Neutral Verdict = ""
	Good    Verdict = "good"
	Bad     Verdict = "bad"
)

// Polarity describes how a column should be read.
type Polarity int

// Polarities.
const (
	// HigherIsBetter flags high values good and low values bad.
	HigherIsBetter Polarity = iota
	// LowerIsBetter inverts the colours, as for heart-rate zones.
	LowerIsBetter
	// BothBad flags both sides, as for session duration.
	BothBad
)

// PolarityOf returns the polarity of a GPS column.
func PolarityOf(column string) Polarity {
	switch {
	case strings.HasPrefix(column, "hr"):
		return LowerIsBetter
	case column == "day_duration":
		return BothBad
	default:
		return HigherIsBetter
	}
}

// ColumnStats holds the bounds of one column.
type ColumnStats struct {
	Column   string   `json:"column"`
	Mean     float64  `json:"mean"`
	Std      float64  `json:"std"`
	Upper    float64  `json:"upper"`
	Lower    float64  `json:"lower"`
	Polarity Polarity `json:"polarity"`
	N        int      `json:"n"`
}

// Stats computes mean and sample standard deviation over non-missing values.
// Upper and Lower are mean plus and minus one deviation. With fewer than two
// values the deviation is NaN and nothing is flagged.
func Stats(column string, values []float64) ColumnStats {
	s := ColumnStats{Column: column, Polarity: PolarityOf(column), Mean: math.NaN(), Std: math.NaN()}
	var sum float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		s.N++
	}
	if s.N == 0 {
		s.Upper, s.Lower = math.NaN(), math.NaN()
		return s
	}
	s.Mean = sum / float64(s.N)
	if s.N > 1 {
		var sq float64
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			d := v - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(s.N-1))
	}
	s.Upper = s.Mean + s.Std
	s.Lower = s.Mean - s.Std
	return s
}

// Cell is a classified value.
type Cell struct {
	Level   Level   `json:"level"`
	Verdict Verdict `json:"verdict,omitempty"`
}

// Classify places v relative to the column bounds.
func (s ColumnStats) Classify(v float64) Cell {
	if math.IsNaN(v) || math.IsNaN(s.Upper) {
		return Cell{Level: Normal}
	}
	switch {
	case v > s.Upper:
		return Cell{Level: High, Verdict: verdict(s.Polarity, High)}
	case v < s.Lower:
		return Cell{Level: Low, Verdict: verdict(s.Polarity, Low)}
	default:
		return Cell{Level: Normal}
	}
}

func verdict(p Polarity, l Level) Verdict {
	switch p {
	case BothBad:
		return Bad
	case LowerIsBetter:
		if l == High {
			return Bad
		}
		return Good
	default:
		if l == High {
			return Good
		}
		return Bad
	}
}

// Benchmark percentile cut-offs for capability cells.
const (
	BenchmarkGood = 60
	BenchmarkBad  = 30
)

// ClassifyBenchmark flags capability percentiles above 60 good and below 30
// bad.
func ClassifyBenchmark(b float64) Cell {
	switch {
	case math.IsNaN(b):
		return Cell{Level: Normal}
	case b > BenchmarkGood:
		return Cell{Level: High, Verdict: Good}
	case b < BenchmarkBad:
		return Cell{Level: Low, Verdict: Bad}
	default:
		return Cell{Level: Normal}
	}
}

// Row is a table row with classified cells.
type Row struct {
	Values map[string]any  `json:"values"`
	Cells  map[string]Cell `json:"cells"`
}

// Table is an explorer grid.
type Table struct {
	Columns []string      `json:"columns"`
	Stats   []ColumnStats `json:"stats,omitempty"`
	Rows    []Row         `json:"rows"`
}
