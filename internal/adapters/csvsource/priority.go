package csvsource

import (
	"io"
	"time"

	"github.com/okian/matchload/internal/domain/priority"
)

// ReadPriorities parses the individual priority areas export. Unparsable
// review and target dates are left zero.
func ReadPriorities(r io.Reader) ([]priority.Goal, error) {
	t, err := readTable(PriorityFile, r, "Priority", "Tracking")
	if err != nil {
		return nil, err
	}
	out := make([]priority.Goal, 0, len(t.rows))
	for n, row := range t.rows {
		p, err := integer(t.get(row, "Priority"))
		if err != nil {
			return nil, t.rowErr(n, "Priority %q", t.get(row, "Priority"))
		}
		out = append(out, priority.Goal{
			Priority:        p,
			Category:        t.get(row, "Category"),
			Area:            t.get(row, "Area"),
			PerformanceType: t.get(row, "Performance Type"),
			ReviewDate:      optionalDate(t.get(row, "Review Date")),
			Tracking:        t.get(row, "Tracking"),
			TargetDate:      optionalDate(t.get(row, "Target set")),
		})
	}
	return out, nil
}

func optionalDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return d
}
