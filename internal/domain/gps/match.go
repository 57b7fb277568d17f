package gps

import (
	"fmt"
	"strconv"
	"strings"
)

// LastMatchKPIs are the headline metrics of the last match.
var LastMatchKPIs = []string{DayDuration, Distance, PeakSpeed, HRZone5}

// KPIDelta is one headline metric of the last match.
type KPIDelta struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	// Delta is the change against the previous match; nil when there is no
	// previous match or either value is missing.
	Delta *float64 `json:"delta,omitempty"`
}

// LastMatchSummary describes the most recent match of a season.
type LastMatchSummary struct {
	Match   string     `json:"match"`
	Session Session    `json:"session"`
	KPIs    []KPIDelta `json:"kpis"`
}

// LastMatch summarises the last of matches, which must be sorted by date.
func LastMatch(matches []Session) (LastMatchSummary, error) {
	if len(matches) == 0 {
		return LastMatchSummary{}, ErrNoMatches
	}
	last := matches[len(matches)-1]
	sum := LastMatchSummary{Match: last.MatchLabel(), Session: last}
	for _, key := range LastMatchKPIs {
		v, ok := last.Metric(key)
		if !ok {
			continue
		}
		kd := KPIDelta{Key: key, Value: v}
		if len(matches) > 1 {
			if prev, ok := matches[len(matches)-2].Metric(key); ok {
				d := Round(v-prev, 2)
				kd.Delta = &d
			}
		}
		sum.KPIs = append(sum.KPIs, kd)
	}
	return sum, nil
}

// ZoneMinutes is one heart-rate zone of one session.
type ZoneMinutes struct {
	Match          string  `json:"match"`
	OppositionFull string  `json:"opposition_full,omitempty"`
	Date           string  `json:"date"`
	Zone           string  `json:"zone"`
	Minutes        float64 `json:"minutes"`
}

// zoneStack is the bottom-to-top stacking order.
var zoneStack = []struct {
	key   string
	label string
}{
	{HRZone5, "5"},
	{HRZone4, "4"},
	{HRZone3, "3"},
	{HRZone2, "2"},
	{HRZone1, "1"},
}

// HeartRateZones melts the zone columns into one row per session per zone,
// zones ordered 5 to 1. Missing zones are skipped.
func HeartRateZones(sessions []Session) []ZoneMinutes {
	out := make([]ZoneMinutes, 0, len(sessions)*len(zoneStack))
	for _, z := range zoneStack {
		for _, s := range sessions {
			v, ok := s.Metric(z.key)
			if !ok {
				continue
			}
			out = append(out, ZoneMinutes{
				Match:          s.MatchLabel(),
				OppositionFull: s.OppositionFull,
				Date:           s.Date.Format("2006-01-02"),
				Zone:           z.label,
				Minutes:        v,
			})
		}
	}
	return out
}

// ParseHMS converts "H:MM:SS" (seconds may be fractional) to minutes rounded
// to one decimal.
func ParseHMS(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	total := float64(h*3600+m*60) + sec
	return Round(total/60, 1), nil
}
