// Package capability holds physical capability test results benchmarked
// against a reference population.
package capability

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Test is one capability test result. Benchmark is a percentile in 0..100.
type Test struct {
	Date       time.Time `json:"date"`
	Movement   string    `json:"movement"`
	Quality    string    `json:"quality"`
	Expression string    `json:"expression"`
	Benchmark  *float64  `json:"benchmark"`
	Class      string    `json:"class"`
}

// ClassOf builds the display class, e.g. "Take-Off-Dynamic".
func ClassOf(quality, expression string) string {
	return titleHyphen(quality) + "-" + titleHyphen(expression)
}

func titleHyphen(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "-")
}

// Band returns the performance band of a benchmark percentile.
func Band(b float64) string {
	switch {
	case b < 25:
		return "Bottom 25%"
	case b > 75:
		return "Top 25%"
	default:
		return "Middle 50%"
	}
}

// Distribution returns the five-way grade of a benchmark percentile.
func Distribution(b float64) string {
	switch {
	case b < 20:
		return "Very Low"
	case b < 40:
		return "Low"
	case b < 60:
		return "Average"
	case b < 80:
		return "High"
	default:
		return "Very High"
	}
}

// Grades lists Distribution values in ascending order.
var Grades = []string{"Very Low", "Low", "Average", "High", "Very High"}

// Movements returns the distinct movements sorted by name.
func Movements(tests []Test) []string {
	out := lo.Uniq(lo.Map(tests, func(t Test, _ int) string { return t.Movement }))
	slices.Sort(out)
	return out
}

// ForMovement keeps tests of movement. An empty movement keeps everything.
func ForMovement(tests []Test, movement string) []Test {
	if movement == "" {
		return slices.Clone(tests)
	}
	return lo.Filter(tests, func(t Test, _ int) bool {
		return strings.EqualFold(t.Movement, movement)
	})
}

// GradeCount is the number of tests of a movement in one grade.
type GradeCount struct {
	Movement string `json:"movement"`
	Grade    string `json:"grade"`
	Count    int    `json:"count"`
}

// DistributionByMovement counts benchmarked tests per movement and grade.
// Every grade of every movement is present, in Grades order.
func DistributionByMovement(tests []Test) []GradeCount {
	counts := make(map[[2]string]int)
	for _, t := range tests {
		if t.Benchmark == nil {
			continue
		}
		counts[[2]string{t.Movement, Distribution(*t.Benchmark)}]++
	}
	var out []GradeCount
	for _, m := range Movements(tests) {
		for _, g := range Grades {
			out = append(out, GradeCount{Movement: m, Grade: g, Count: counts[[2]string{m, g}]})
		}
	}
	return out
}

// WeeklySample keeps the first benchmarked test of each week, weeks ending
// on Monday. tests must be sorted by date.
func WeeklySample(tests []Test) []Test {
	var out []Test
	seen := make(map[time.Time]struct{})
	for _, t := range tests {
		if t.Benchmark == nil {
			continue
		}
		end := weekEnd(t.Date)
		if _, ok := seen[end]; ok {
			continue
		}
		seen[end] = struct{}{}
		out = append(out, t)
	}
	return out
}

func weekEnd(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	ahead := (int(time.Monday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, ahead)
}

// LastDays keeps the tests within n days of the latest test.
func LastDays(tests []Test, n int) []Test {
	if len(tests) == 0 {
		return nil
	}
	latest := lo.MaxBy(tests, func(a, b Test) bool { return a.Date.After(b.Date) }).Date
	from := latest.AddDate(0, 0, -n)
	return lo.Filter(tests, func(t Test, _ int) bool { return !t.Date.Before(from) })
}
