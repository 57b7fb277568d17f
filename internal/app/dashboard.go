package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/matchload/internal/domain/capability"
	"github.com/okian/matchload/internal/domain/explorer"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
	"github.com/okian/matchload/internal/domain/priority"
	"github.com/okian/matchload/internal/domain/recovery"
	"github.com/okian/matchload/pkg/logger"
	"github.com/okian/matchload/pkg/metrics"
)

// sessions returns the GPS sessions of season, per-minute when normalize is
// set. An empty season selects all sessions.
func (s *Service) sessions(ctx context.Context, season string, normalize bool) ([]gps.Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.datasets.GPS(ctx)
	if err != nil {
		return nil, err
	}
	sel := gps.FilterSeason(all, season)
	if normalize {
		sel = gps.Normalize(sel)
	}
	return sel, nil
}

// Seasons lists the seasons present in the GPS data.
func (s *Service) Seasons(ctx context.Context) ([]string, error) {
	all, err := s.sessions(ctx, "", false)
	if err != nil {
		return nil, err
	}
	return gps.Seasons(all), nil
}

// CycleDurations lists the cycle lengths present in season.
func (s *Service) CycleDurations(ctx context.Context, season string) ([]int, error) {
	sel, err := s.sessions(ctx, season, false)
	if err != nil {
		return nil, err
	}
	return loadcalendar.CycleDurations(gps.ToDailyRecords(sel)), nil
}

// Cycles averages every GPS KPI by offset label over the cycles of the given
// length. A season or length with no data gives an empty result.
func (s *Service) Cycles(ctx context.Context, season string, length int, normalize bool) (loadcalendar.Result, error) {
	if length < 1 || length > s.maxCycleLength {
		return loadcalendar.Result{}, fmt.Errorf("%w: length %d outside 1..%d", ErrInvalidArgument, length, s.maxCycleLength)
	}
	sel, err := s.sessions(ctx, season, normalize)
	if err != nil {
		return loadcalendar.Result{}, err
	}

	start := time.Now()
	res := loadcalendar.BuildCycleAverages(gps.ToDailyRecords(sel), length, loadcalendar.WithKPIs(gps.FeatureKeys()...))
	outcome := "ok"
	if res.Empty() {
		outcome = "empty"
	}
	metrics.RecordCycleBuild(outcome, float64(time.Since(start).Microseconds())/1000)
	s.logger.Debug(ctx, "cycle averages built",
		logger.String("season", season),
		logger.Int("length", length),
		logger.Bool("normalize", normalize),
		logger.Int("groups", len(res.Groups)),
		logger.Int("matches", res.Matches),
	)
	return res, nil
}

// Matches returns the match-day sessions of season.
func (s *Service) Matches(ctx context.Context, season string, normalize bool) ([]gps.Session, error) {
	sel, err := s.sessions(ctx, season, normalize)
	if err != nil {
		return nil, err
	}
	return gps.MatchDays(sel), nil
}

// Training returns the training sessions of season.
func (s *Service) Training(ctx context.Context, season string, normalize bool) ([]gps.Session, error) {
	sel, err := s.sessions(ctx, season, normalize)
	if err != nil {
		return nil, err
	}
	return gps.TrainingDays(sel), nil
}

// LastMatch summarises the latest match of season against the one before.
func (s *Service) LastMatch(ctx context.Context, season string) (gps.LastMatchSummary, error) {
	matches, err := s.Matches(ctx, season, false)
	if err != nil {
		return gps.LastMatchSummary{}, err
	}
	return gps.LastMatch(matches)
}

// HeartRate returns the minutes per heart-rate zone of every match of season.
func (s *Service) HeartRate(ctx context.Context, season string) ([]gps.ZoneMinutes, error) {
	matches, err := s.Matches(ctx, season, false)
	if err != nil {
		return nil, err
	}
	return gps.HeartRateZones(matches), nil
}

// Recovery summarises a recovery category. An empty category is "total".
func (s *Service) Recovery(ctx context.Context, category string) (recovery.Summary, error) {
	if err := s.ready(); err != nil {
		return recovery.Summary{}, err
	}
	if category == "" {
		category = recovery.Total
	}
	entries, err := s.datasets.Recovery(ctx)
	if err != nil {
		return recovery.Summary{}, err
	}
	return recovery.Summarize(entries, category)
}

// CapabilityView is the capability tests of one movement.
type CapabilityView struct {
	Movements []string          `json:"movements"`
	Movement  string            `json:"movement"`
	Tests     []capability.Test `json:"tests"`
	Weekly    []capability.Test `json:"weekly"`
}

// Capability returns the tests of movement. An empty movement selects the
// first one; an unknown movement gives no tests.
func (s *Service) Capability(ctx context.Context, movement string) (CapabilityView, error) {
	tests, err := s.capabilityTests(ctx)
	if err != nil {
		return CapabilityView{}, err
	}
	view := CapabilityView{Movements: capability.Movements(tests), Movement: strings.TrimSpace(movement)}
	if view.Movement == "" && len(view.Movements) > 0 {
		view.Movement = view.Movements[0]
	}
	view.Tests = capability.ForMovement(tests, view.Movement)
	view.Weekly = capability.WeeklySample(view.Tests)
	return view, nil
}

// CapabilityDistribution counts benchmark grades per movement.
func (s *Service) CapabilityDistribution(ctx context.Context) ([]capability.GradeCount, error) {
	tests, err := s.capabilityTests(ctx)
	if err != nil {
		return nil, err
	}
	return capability.DistributionByMovement(tests), nil
}

func (s *Service) capabilityTests(ctx context.Context) ([]capability.Test, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.datasets.Capability(ctx)
}

// ExplorerGPS classifies every GPS cell against its column statistics.
func (s *Service) ExplorerGPS(ctx context.Context) (explorer.Table, error) {
	all, err := s.sessions(ctx, "", false)
	if err != nil {
		return explorer.Table{}, err
	}
	return explorer.GPSTable(all), nil
}

// ExplorerCapability classifies every capability benchmark.
func (s *Service) ExplorerCapability(ctx context.Context) (explorer.Table, error) {
	tests, err := s.capabilityTests(ctx)
	if err != nil {
		return explorer.Table{}, err
	}
	return explorer.CapabilityTable(tests), nil
}

// Priorities returns the goals split into on-track and achieved.
func (s *Service) Priorities(ctx context.Context) (priority.Board, error) {
	if err := s.ready(); err != nil {
		return priority.Board{}, err
	}
	goals, err := s.datasets.Priorities(ctx)
	if err != nil {
		return priority.Board{}, err
	}
	return priority.Split(goals), nil
}
