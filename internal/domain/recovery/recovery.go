// Package recovery summarises recovery-status scores with a traffic-light
// split relative to the observed range.
package recovery

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Categories lists the selectable recovery categories.
var Categories = []string{
	"subjective",
	"soreness",
	"sleep",
	"bio",
	"msk_load_tolerance",
	"msk_joint_range",
	"total",
}

// Total is the category whose rows are all composite scores.
const Total = "total"

// ErrUnknownCategory is returned for a category outside Categories.
var ErrUnknownCategory = errors.New("unknown recovery category")

// Entry is one recovery measurement.
type Entry struct {
	SessionDate time.Time `json:"session_date"`
	Season      string    `json:"season,omitempty"`
	Category    string    `json:"category"`
	Metric      string    `json:"metric"`
	Value       *float64  `json:"value"`
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Band is a traffic-light range: values above High are green, values below
// Low are red.
type Band struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Thresholds puts the red boundary at 30% and the green boundary at 70% of
// the observed range. ok is false when values is empty.
func Thresholds(values []float64) (b Band, ok bool) {
	if len(values) == 0 {
		return Band{}, false
	}
	b.Min, b.Max = lo.Min(values), lo.Max(values)
	span := b.Max - b.Min
	b.Low = b.Min + span*0.3
	b.High = b.Min + span*0.7
	return b, true
}

// Point is one dated value of a series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is the history of one metric with its own band.
type Series struct {
	Metric string  `json:"metric"`
	Name   string  `json:"name"`
	Band   Band    `json:"band"`
	Points []Point `json:"points"`
}

// Summary is the recovery view of one category.
type Summary struct {
	Category  string   `json:"category"`
	Composite Band     `json:"composite"`
	Green     int      `json:"green_days"`
	White     int      `json:"white_days"`
	Red       int      `json:"red_days"`
	Series    []Series `json:"series"`
}

// Summarize counts green, white and red composite rows of category and
// builds one series per metric, metrics in reverse name order. Entries
// without a value are ignored.
func Summarize(entries []Entry, category string) (Summary, error) {
	if !ValidCategory(category) {
		return Summary{}, ErrUnknownCategory
	}
	sum := Summary{Category: category, Series: []Series{}}
	selected := lo.Filter(entries, func(e Entry, _ int) bool {
		return e.Category == category && e.Value != nil
	})

	composite := selected
	if category != Total {
		composite = lo.Filter(selected, func(e Entry, _ int) bool {
			return strings.Contains(e.Metric, "composite")
		})
	}
	values := lo.Map(composite, func(e Entry, _ int) float64 { return *e.Value })
	if band, ok := Thresholds(values); ok {
		sum.Composite = band
		for _, v := range values {
			switch {
			case v > band.High:
				sum.Green++
			case v < band.Low:
				sum.Red++
			default:
				sum.White++
			}
		}
	}

	byMetric := lo.GroupBy(selected, func(e Entry) string { return e.Metric })
	metrics := lo.Keys(byMetric)
	slices.Sort(metrics)
	slices.Reverse(metrics)
	for _, m := range metrics {
		rows := byMetric[m]
		slices.SortStableFunc(rows, func(a, b Entry) int { return a.SessionDate.Compare(b.SessionDate) })
		points := lo.Map(rows, func(e Entry, _ int) Point { return Point{Date: e.SessionDate, Value: *e.Value} })
		band, _ := Thresholds(lo.Map(points, func(p Point, _ int) float64 { return p.Value }))
		sum.Series = append(sum.Series, Series{Metric: m, Name: MetricName(m), Band: band, Points: points})
	}
	return sum, nil
}

// MetricName turns "sleep_composite" into "Composite".
func MetricName(metric string) string {
	parts := strings.Split(metric, "_")
	last := parts[len(parts)-1]
	if last == "" {
		return metric
	}
	return strings.ToUpper(last[:1]) + strings.ToLower(last[1:])
}

// Since keeps entries of category dated on or after from. An empty category
// keeps every category.
func Since(entries []Entry, category string, from time.Time) []Entry {
	return lo.Filter(entries, func(e Entry, _ int) bool {
		return (category == "" || e.Category == category) && !e.SessionDate.Before(from)
	})
}
