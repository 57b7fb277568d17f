package csvsource

import (
	"io"
	"slices"

	"github.com/okian/matchload/internal/domain/capability"
)

// ReadCapability parses the physical capability export sorted by test date.
// benchmarkPct is a fraction in the file and a percentile in the result.
func ReadCapability(r io.Reader) ([]capability.Test, error) {
	t, err := readTable(CapabilityFile, r, "testDate", "movement", "benchmarkPct")
	if err != nil {
		return nil, err
	}
	out := make([]capability.Test, 0, len(t.rows))
	for n, row := range t.rows {
		date, err := ParseDate(t.get(row, "testDate"))
		if err != nil {
			return nil, t.rowErr(n, "%v", err)
		}
		c := capability.Test{
			Date:       date,
			Movement:   t.get(row, "movement"),
			Quality:    t.get(row, "quality"),
			Expression: t.get(row, "expression"),
		}
		c.Class = capability.ClassOf(c.Quality, c.Expression)
		var bad []string
		v, ok := t.value(row, "benchmarkPct", &bad)
		t.warnBad(n, bad)
		if ok {
			pct := v * 100
			c.Benchmark = &pct
		}
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b capability.Test) int { return a.Date.Compare(b.Date) })
	return out, nil
}
