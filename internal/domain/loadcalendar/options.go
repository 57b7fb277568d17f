package loadcalendar

// Option configures BuildCycleAverages.
type Option func(*options)

type options struct {
	kpis []string
}

// WithKPIs restricts and orders the averaged KPIs. By default every KPI name
// found in the input is averaged, sorted by name.
func WithKPIs(names ...string) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.kpis = append([]string(nil), names...)
		}
	}
}
