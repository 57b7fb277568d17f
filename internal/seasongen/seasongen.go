// Package seasongen produces deterministic synthetic GPS seasons for demos,
// the generate command and tests.
package seasongen

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/okian/matchload/internal/domain/gps"
)

const (
	defaultSeed   = 7
	minGap        = 3
	maxGap        = 7
	seasonStartMo = time.August
	seasonStartD  = 10
	seasonEndMo   = time.May
	seasonEndD    = 25
	restDayChance = 0.08
)

// Opponent is a fixture opponent.
type Opponent struct {
	Code string
	Name string
}

// Opponents is the fixture pool.
var Opponents = []Opponent{
	{"ARS", "Arsenal"},
	{"AVL", "Aston Villa"},
	{"BOU", "Bournemouth"},
	{"BRE", "Brentford"},
	{"BHA", "Brighton & Hove Albion"},
	{"CRY", "Crystal Palace"},
	{"EVE", "Everton"},
	{"FUL", "Fulham"},
	{"LIV", "Liverpool"},
	{"MCI", "Manchester City"},
	{"MUN", "Manchester United"},
	{"NEW", "Newcastle United"},
	{"NFO", "Nottingham Forest"},
	{"TOT", "Tottenham Hotspur"},
	{"WHU", "West Ham United"},
	{"WOL", "Wolverhampton Wanderers"},
}

// Generator builds seasons from a seeded source.
type Generator struct {
	seed    uint64
	seasons []string
	rng     *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the random seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithSeasons sets the season names, e.g. "2023/2024". Each season runs from
// mid August of its first year to late May of the next.
func WithSeasons(names ...string) Option {
	return func(g *Generator) {
		if len(names) > 0 {
			g.seasons = names
		}
	}
}

// New returns a Generator. The default is one season, "2023/2024".
func New(opts ...Option) *Generator {
	g := &Generator{seed: defaultSeed, seasons: []string{"2023/2024"}}
	for _, opt := range opts {
		opt(g)
	}
	g.rng = rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))
	return g
}

// SeasonNames returns count consecutive season names ending with the season
// that starts in lastStartYear.
func SeasonNames(lastStartYear, count int) []string {
	out := make([]string, 0, count)
	for y := lastStartYear - count + 1; y <= lastStartYear; y++ {
		out = append(out, fmt.Sprintf("%d/%d", y, y+1))
	}
	return out
}

// Generate returns every session of every season in date order.
func (g *Generator) Generate() ([]gps.Session, error) {
	var out []gps.Session
	for _, name := range g.seasons {
		start, end, err := seasonBounds(name)
		if err != nil {
			return nil, err
		}
		out = append(out, g.season(name, start, end)...)
	}
	return out, nil
}

func seasonBounds(name string) (time.Time, time.Time, error) {
	first, _, ok := strings.Cut(name, "/")
	year, err := strconv.Atoi(first)
	if !ok || err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("season %q: want YYYY/YYYY", name)
	}
	start := time.Date(year, seasonStartMo, seasonStartD, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, seasonEndMo, seasonEndD, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

func (g *Generator) season(name string, start, end time.Time) []gps.Session {
	var matches []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, minGap+g.rng.IntN(maxGap-minGap+1)) {
		matches = append(matches, d)
	}

	var out []gps.Session
	for i, m := range matches {
		opp := Opponents[g.rng.IntN(len(Opponents))]
		gap := 0
		if i+1 < len(matches) {
			gap = int(matches[i+1].Sub(m).Hours() / 24)
		}
		out = append(out, gps.Session{
			Date:           m,
			Season:         name,
			MDPlusCode:     0,
			MDMinusCode:    -gap,
			OppositionCode: opp.Code,
			OppositionFull: opp.Name,
			Metrics:        g.matchMetrics(),
		})
		for day := 1; day < gap; day++ {
			if g.rng.Float64() < restDayChance {
				continue
			}
			out = append(out, gps.Session{
				Date:        m.AddDate(0, 0, day),
				Season:      name,
				MDPlusCode:  day,
				MDMinusCode: day - gap,
				Metrics:     g.trainingMetrics(day, gap),
			})
		}
	}
	return out
}

func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) matchMetrics() map[string]float64 {
	return g.metrics(g.between(88, 100), 1)
}

// Training intensity dips the day after a match and tapers before the next.
func (g *Generator) trainingMetrics(day, gap int) map[string]float64 {
	intensity := 0.55
	switch {
	case day == 1:
		intensity = 0.3
	case gap-day == 1:
		intensity = 0.45
	case gap-day == 2:
		intensity = 0.7
	}
	return g.metrics(g.between(45, 85), intensity)
}

func (g *Generator) metrics(duration, intensity float64) map[string]float64 {
	duration = gps.Round(duration, 1)
	perMin := g.between(95, 125) * intensity
	distance := duration * perMin
	z5 := gps.Round(duration*g.between(0.02, 0.12)*intensity, 1)
	z4 := gps.Round(duration*g.between(0.08, 0.18)*intensity, 1)
	z3 := gps.Round(duration*g.between(0.15, 0.25), 1)
	z2 := gps.Round(duration*g.between(0.2, 0.3), 1)
	z1 := gps.Round(max(duration-z5-z4-z3-z2, 0)*g.between(0.5, 0.9), 1)
	return map[string]float64{
		gps.DayDuration:       duration,
		gps.Distance:          gps.Round(distance, 2),
		gps.DistanceOver21:    gps.Round(distance*g.between(0.06, 0.1)*intensity, 2),
		gps.DistanceOver24:    gps.Round(distance*g.between(0.02, 0.05)*intensity, 2),
		gps.DistanceOver27:    gps.Round(distance*g.between(0.002, 0.015)*intensity, 2),
		gps.PeakSpeed:         gps.Round(g.between(6.5, 9.5)*(0.8+0.2*intensity), 2),
		gps.AccelDecelOver2_5: float64(int(duration * g.between(0.8, 1.4) * intensity)),
		gps.AccelDecelOver3_5: float64(int(duration * g.between(0.3, 0.6) * intensity)),
		gps.AccelDecelOver4_5: float64(int(duration * g.between(0.05, 0.2) * intensity)),
		gps.HRZone1:           z1,
		gps.HRZone2:           z2,
		gps.HRZone3:           z3,
		gps.HRZone4:           z4,
		gps.HRZone5:           z5,
	}
}
