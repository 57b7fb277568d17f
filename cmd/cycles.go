package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/okian/matchload/internal/adapters/csvsource"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
	"github.com/okian/matchload/pkg/logger"
)

type cyclesOptions struct {
	file      string
	season    string
	length    int
	normalize bool
	kpis      []string
}

func newCyclesCmd() *cobra.Command {
	var o cyclesOptions
	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Print average load per day of the match cycle",
		Long: `Print the load calendar for cycles of one length from a GPS export.

Rows with the chosen cycle length are grouped by days since the previous
match. Match days are listed as "match" when the following cycle has the same
length and as "next match" when the previous one has.

EXAMPLES:

  matchload cycles --file gps.csv --length 7
  matchload cycles --file gps.csv --season 2023/2024 --length 4 --normalize
  matchload cycles --file gps.csv --length 7 --kpi distance --kpi peak_speed`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			// Warnings about unreadable cells go to stderr, away from the table.
			return logger.InitWithWriter(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCycles(cmd.OutOrStdout(), o)
		},
	}
	cmd.Flags().StringVarP(&o.file, "file", "f", "", "GPS CSV export")
	cmd.Flags().StringVarP(&o.season, "season", "s", "", "season such as 2023/2024; empty means every season")
	cmd.Flags().IntVarP(&o.length, "length", "l", 0, "cycle length in days")
	cmd.Flags().BoolVarP(&o.normalize, "normalize", "n", false, "divide each KPI by day_duration")
	cmd.Flags().StringSliceVarP(&o.kpis, "kpi", "k", nil, "KPIs to show (default: all)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

func runCycles(w io.Writer, o cyclesOptions) error {
	if o.length < 1 {
		return fmt.Errorf("--length must be positive, got %d", o.length)
	}
	kpis := gps.FeatureKeys()
	if len(o.kpis) > 0 {
		if unknown, _ := lo.Difference(o.kpis, kpis); len(unknown) > 0 {
			return fmt.Errorf("unknown KPI %s", strings.Join(unknown, ", "))
		}
		kpis = o.kpis
	}

	f, err := os.Open(o.file)
	if err != nil {
		return err
	}
	defer f.Close()
	sessions, err := csvsource.ReadGPS(f)
	if err != nil {
		return err
	}

	sel := gps.FilterSeason(sessions, o.season)
	if o.normalize {
		sel = gps.Normalize(sel)
	}
	res := loadcalendar.BuildCycleAverages(gps.ToDailyRecords(sel), o.length, loadcalendar.WithKPIs(kpis...))
	if res.Empty() {
		durations := loadcalendar.CycleDurations(gps.ToDailyRecords(sel))
		fmt.Fprintf(w, "no %d-day cycles; lengths present: %s\n", o.length,
			strings.Join(lo.Map(durations, func(d, _ int) string { return fmt.Sprint(d) }), ", "))
		return nil
	}
	printCycles(w, res)
	return nil
}

// printCycles writes res as an aligned table, one row per label.
func printCycles(w io.Writer, res loadcalendar.Result) {
	header := append([]string{"label", "rows"}, res.KPIs...)
	rows := lo.Map(res.Groups, func(g loadcalendar.Group, _ int) []string {
		row := []string{g.Label.String(), fmt.Sprint(g.Rows)}
		for _, k := range res.KPIs {
			if v, ok := g.Mean(k); ok {
				row = append(row, fmt.Sprintf("%.2f", v))
			} else {
				row = append(row, "-")
			}
		}
		return row
	})

	widths := lo.Map(header, func(h string, _ int) int { return len(h) })
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	bold := color.New(color.Bold)
	label := color.New(color.FgCyan)
	match := color.New(color.FgYellow, color.Bold)

	fmt.Fprintln(w, bold.Sprintf("%-*s  %s", widths[0], header[0], alignRight(header[1:], widths[1:])))
	for i, row := range rows {
		l := label
		if _, isDay := res.Groups[i].Label.DayIndex(); !isDay {
			l = match
		}
		fmt.Fprintf(w, "%s  %s\n", l.Sprintf("%-*s", widths[0], row[0]), alignRight(row[1:], widths[1:]))
	}
	faint := color.New(color.Faint)
	fmt.Fprintln(w, faint.Sprintf("%d-day cycles, %d matches", res.Length, res.Matches))
}

func alignRight(cells []string, widths []int) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = fmt.Sprintf("%*s", widths[i], c)
	}
	return strings.Join(out, "  ")
}
