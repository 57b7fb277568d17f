package csvsource

import (
	"io"
	"slices"

	"github.com/okian/matchload/internal/domain/recovery"
)

// ReadRecovery parses the recovery status export sorted by session date.
func ReadRecovery(r io.Reader) ([]recovery.Entry, error) {
	t, err := readTable(RecoveryFile, r, "sessionDate", "category", "metric", "value")
	if err != nil {
		return nil, err
	}
	season := "seasonName"
	if !t.has(season) {
		season = "season"
	}
	out := make([]recovery.Entry, 0, len(t.rows))
	for n, row := range t.rows {
		date, err := ParseDate(t.get(row, "sessionDate"))
		if err != nil {
			return nil, t.rowErr(n, "%v", err)
		}
		e := recovery.Entry{
			SessionDate: date,
			Season:      t.get(row, season),
			Category:    t.get(row, "category"),
			Metric:      t.get(row, "metric"),
		}
		var bad []string
		v, ok := t.value(row, "value", &bad)
		t.warnBad(n, bad)
		if ok {
			e.Value = &v
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b recovery.Entry) int { return a.SessionDate.Compare(b.SessionDate) })
	return out, nil
}
