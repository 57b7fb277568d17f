// Package gps models daily GPS load sessions and the views derived from them:
// per-duration normalisation, match and training selections, last-match
// deltas and heart-rate zone breakdowns.
package gps

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/okian/matchload/internal/domain/loadcalendar"
)

// KPI keys.
const (
	DayDuration       = "day_duration"
	Distance          = "distance"
	DistanceOver21    = "distance_over_21"
	DistanceOver24    = "distance_over_24"
	DistanceOver27    = "distance_over_27"
	PeakSpeed         = "peak_speed"
	AccelDecelOver2_5 = "accel_decel_over_2_5"
	AccelDecelOver3_5 = "accel_decel_over_3_5"
	AccelDecelOver4_5 = "accel_decel_over_4_5"
	HRZone1           = "hr_zone_1_m"
	HRZone2           = "hr_zone_2_m"
	HRZone3           = "hr_zone_3_m"
	HRZone4           = "hr_zone_4_m"
	HRZone5           = "hr_zone_5_m"
)

// Feature is a KPI key with its display name.
type Feature struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Features lists every KPI in display order.
var Features = []Feature{
	{DayDuration, "Day Duration (mins)"},
	{Distance, "Distance"},
	{DistanceOver21, "Distance > 21 km/h"},
	{DistanceOver24, "Distance > 24 km/h"},
	{DistanceOver27, "Distance > 27 km/h"},
	{PeakSpeed, "Peak Speed (m/s)"},
	{AccelDecelOver2_5, "Accel/Decel > 2.5 m/s²"},
	{AccelDecelOver3_5, "Accel/Decel > 3.5 m/s²"},
	{AccelDecelOver4_5, "Accel/Decel > 4.5 m/s²"},
	{HRZone1, "Heart Rate Zone 1 (mins)"},
	{HRZone2, "Heart Rate Zone 2 (mins)"},
	{HRZone3, "Heart Rate Zone 3 (mins)"},
	{HRZone4, "Heart Rate Zone 4 (mins)"},
	{HRZone5, "Heart Rate Zone 5 (mins)"},
}

// FeatureKeys returns the KPI keys of Features in order.
func FeatureKeys() []string {
	return lo.Map(Features, func(f Feature, _ int) string { return f.Key })
}

// Session is one day of GPS data.
type Session struct {
	Date           time.Time          `json:"date"`
	Season         string             `json:"season"`
	MDPlusCode     int                `json:"md_plus_code"`
	MDMinusCode    int                `json:"md_minus_code"`
	OppositionCode string             `json:"opposition_code,omitempty"`
	OppositionFull string             `json:"opposition_full,omitempty"`
	Metrics        map[string]float64 `json:"metrics"`
}

// MatchWeekDuration is the length of the match-to-match cycle of the session.
func (s Session) MatchWeekDuration() int {
	return s.record().MatchWeekDuration()
}

// IsMatchDay reports whether the session is a match.
func (s Session) IsMatchDay() bool {
	return s.MDPlusCode == 0
}

// MatchLabel identifies a match on charts, e.g. "ARS_08-17".
func (s Session) MatchLabel() string {
	return s.OppositionCode + "_" + s.Date.Format("01-02")
}

// Metric returns a KPI value and false when it is missing.
func (s Session) Metric(key string) (float64, bool) {
	return s.record().Value(key)
}

func (s Session) record() loadcalendar.DailyRecord {
	return loadcalendar.DailyRecord{
		Date:             s.Date,
		MatchOffsetPlus:  s.MDPlusCode,
		MatchOffsetMinus: s.MDMinusCode,
		KPIs:             s.Metrics,
	}
}

// ToDailyRecords converts sessions for the load-calendar normalizer.
func ToDailyRecords(sessions []Session) []loadcalendar.DailyRecord {
	return lo.Map(sessions, func(s Session, _ int) loadcalendar.DailyRecord {
		return s.record()
	})
}

// Normalize divides every KPI except day_duration by day_duration, rounded to
// two decimals. A zero or missing duration leaves the KPI missing, as does a
// non-finite value. The input is not modified.
func Normalize(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		metrics := make(map[string]float64, len(s.Metrics))
		dur, hasDur := s.Metric(DayDuration)
		for k, v := range s.Metrics {
			if k == DayDuration {
				if finite(v) {
					metrics[k] = v
				}
				continue
			}
			if !hasDur || !finite(dur) || dur == 0 || !finite(v) {
				continue
			}
			metrics[k] = Round(v/dur, 2)
		}
		s.Metrics = metrics
		out[i] = s
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Seasons returns the distinct seasons in ascending order.
func Seasons(sessions []Session) []string {
	out := lo.Uniq(lo.Map(sessions, func(s Session, _ int) string { return s.Season }))
	slices.Sort(out)
	return out
}

// FilterSeason keeps sessions of season. An empty season keeps everything.
func FilterSeason(sessions []Session, season string) []Session {
	if season == "" {
		return slices.Clone(sessions)
	}
	return lo.Filter(sessions, func(s Session, _ int) bool { return s.Season == season })
}

// MatchDays keeps match sessions.
func MatchDays(sessions []Session) []Session {
	return lo.Filter(sessions, func(s Session, _ int) bool { return s.IsMatchDay() })
}

// TrainingDays keeps sessions without an opponent.
func TrainingDays(sessions []Session) []Session {
	return lo.Filter(sessions, func(s Session, _ int) bool { return s.OppositionCode == "" })
}

// Round rounds v to dp decimals.
func Round(v float64, dp int) float64 {
	p := math.Pow10(dp)
	return math.Round(v*p) / p
}
