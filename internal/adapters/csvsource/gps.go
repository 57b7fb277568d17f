package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"golang.org/x/text/encoding/charmap"

	"github.com/okian/matchload/internal/domain/gps"
)

// GPS export columns.
const (
	colDate           = "date"
	colSeason         = "season"
	colMDPlus         = "md_plus_code"
	colMDMinus        = "md_minus_code"
	colOppositionCode = "opposition_code"
	colOppositionFull = "opposition_full"
)

// numericGPS are the plain numeric KPI columns.
var numericGPS = []string{
	gps.DayDuration,
	gps.Distance,
	gps.DistanceOver21,
	gps.DistanceOver24,
	gps.DistanceOver27,
	gps.AccelDecelOver2_5,
	gps.AccelDecelOver3_5,
	gps.AccelDecelOver4_5,
	gps.PeakSpeed,
}

// hrColumns maps the H:MM:SS export columns to minute KPIs.
var hrColumns = []struct{ src, dst string }{
	{"hr_zone_1_hms", gps.HRZone1},
	{"hr_zone_2_hms", gps.HRZone2},
	{"hr_zone_3_hms", gps.HRZone3},
	{"hr_zone_4_hms", gps.HRZone4},
	{"hr_zone_5_hms", gps.HRZone5},
}

// ReadGPS parses an ISO-8859-1 GPS export, sorted by date. day_duration is
// rounded to one decimal. Only the date and md codes are structural: a KPI
// cell that is unparsable or non-finite is read as missing.
func ReadGPS(r io.Reader) ([]gps.Session, error) {
	t, err := readTable(GPSFile, charmap.ISO8859_1.NewDecoder().Reader(r), colDate, colMDPlus, colMDMinus)
	if err != nil {
		return nil, err
	}
	out := make([]gps.Session, 0, len(t.rows))
	for n, row := range t.rows {
		date, err := ParseDate(t.get(row, colDate))
		if err != nil {
			return nil, t.rowErr(n, "%v", err)
		}
		plus, err := integer(t.get(row, colMDPlus))
		if err != nil {
			return nil, t.rowErr(n, "md_plus_code %q", t.get(row, colMDPlus))
		}
		minus, err := integer(t.get(row, colMDMinus))
		if err != nil {
			return nil, t.rowErr(n, "md_minus_code %q", t.get(row, colMDMinus))
		}
		s := gps.Session{
			Date:           date,
			Season:         t.get(row, colSeason),
			MDPlusCode:     plus,
			MDMinusCode:    minus,
			OppositionCode: t.get(row, colOppositionCode),
			OppositionFull: t.get(row, colOppositionFull),
			Metrics:        make(map[string]float64, len(numericGPS)+len(hrColumns)),
		}
		var bad []string
		for _, col := range numericGPS {
			if v, ok := t.value(row, col, &bad); ok {
				s.Metrics[col] = v
			}
		}
		if v, ok := s.Metrics[gps.DayDuration]; ok {
			s.Metrics[gps.DayDuration] = gps.Round(v, 1)
		}
		for _, hr := range hrColumns {
			raw := t.get(row, hr.src)
			if raw == "" {
				continue
			}
			v, err := gps.ParseHMS(raw)
			if err != nil {
				bad = append(bad, hr.src)
				continue
			}
			s.Metrics[hr.dst] = v
		}
		t.warnBad(n, bad)
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b gps.Session) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// WriteGPS writes sessions in the export layout, ISO-8859-1 encoded.
func WriteGPS(w io.Writer, sessions []gps.Session) error {
	cw := csv.NewWriter(charmap.ISO8859_1.NewEncoder().Writer(w))
	header := []string{colDate, colSeason, colMDPlus, colMDMinus, colOppositionCode, colOppositionFull}
	header = append(header, numericGPS...)
	for _, hr := range hrColumns {
		header = append(header, hr.src)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range sessions {
		rec := []string{
			s.Date.Format("02/01/2006"),
			s.Season,
			strconv.Itoa(s.MDPlusCode),
			strconv.Itoa(s.MDMinusCode),
			s.OppositionCode,
			s.OppositionFull,
		}
		for _, col := range numericGPS {
			rec = append(rec, formatMetric(s.Metrics, col))
		}
		for _, hr := range hrColumns {
			v, ok := s.Metrics[hr.dst]
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, FormatHMS(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatMetric(m map[string]float64, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatHMS renders minutes as H:MM:SS.
func FormatHMS(minutes float64) string {
	total := int(minutes*60 + 0.5)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}
