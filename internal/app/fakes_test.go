package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/matchload/internal/adapters/external"
	"github.com/okian/matchload/internal/domain/analysis"
	"github.com/okian/matchload/internal/domain/capability"
	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/injury"
	"github.com/okian/matchload/internal/domain/priority"
	"github.com/okian/matchload/internal/domain/recovery"
	"github.com/okian/matchload/internal/seasongen"
)

type fakeDatasets struct {
	sessions []gps.Session
	tests    []capability.Test
	entries  []recovery.Entry
	goals    []priority.Goal

	mu    sync.Mutex
	warms int
}

func (f *fakeDatasets) GPS(context.Context) ([]gps.Session, error)            { return f.sessions, nil }
func (f *fakeDatasets) Capability(context.Context) ([]capability.Test, error) { return f.tests, nil }
func (f *fakeDatasets) Recovery(context.Context) ([]recovery.Entry, error)    { return f.entries, nil }
func (f *fakeDatasets) Priorities(context.Context) ([]priority.Goal, error)   { return f.goals, nil }
func (f *fakeDatasets) Warm(context.Context) error                            { f.mu.Lock(); f.warms++; f.mu.Unlock(); return nil }
func (f *fakeDatasets) warmCount() int                                        { f.mu.Lock(); defer f.mu.Unlock(); return f.warms }

func ptr(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newFakeDatasets() *fakeDatasets {
	sessions, err := seasongen.New(seasongen.WithSeed(3), seasongen.WithSeasons("2023/2024", "2024/2025")).Generate()
	if err != nil {
		panic(err)
	}
	return &fakeDatasets{
		sessions: sessions,
		tests: []capability.Test{
			{Date: day(2024, 8, 31), Movement: "jump", Quality: "land", Expression: "isometric", Benchmark: ptr(25), Class: "Land-Isometric"},
			{Date: day(2024, 9, 2), Movement: "jump", Quality: "take_off", Expression: "dynamic", Benchmark: ptr(72), Class: "Take-Off-Dynamic"},
			{Date: day(2024, 9, 10), Movement: "sprint", Quality: "acceleration", Expression: "dynamic", Benchmark: ptr(55), Class: "Acceleration-Dynamic"},
		},
		entries: []recovery.Entry{
			{SessionDate: day(2024, 7, 30), Category: "sleep", Metric: "emboss_baseline_score_sleep_composite", Value: ptr(0.1)},
			{SessionDate: day(2024, 8, 2), Category: "sleep", Metric: "emboss_baseline_score_sleep_composite", Value: ptr(0.4)},
			{SessionDate: day(2024, 8, 3), Category: "sleep", Metric: "emboss_baseline_score_sleep_composite", Value: ptr(-0.2)},
			{SessionDate: day(2024, 8, 2), Category: "total", Metric: "emboss_baseline_score", Value: ptr(0.3)},
			{SessionDate: day(2024, 8, 3), Category: "total", Metric: "emboss_baseline_score", Value: ptr(-0.5)},
		},
		goals: []priority.Goal{
			{Priority: 2, Area: "Sprint", Tracking: priority.OnTrack},
			{Priority: 1, Area: "Strength", Tracking: priority.OnTrack},
			{Priority: 1, Area: "Sleep", Tracking: priority.Achieved},
		},
	}
}

type fakeSquad struct{}

var squad = []external.Player{
	{Name: "Cole Palmer", Title: "Cole_Palmer", URL: "https://en.wikipedia.org/wiki/Cole_Palmer"},
	{Name: "Reece James", Title: "Reece_James_(footballer,_born_1999)", URL: "https://en.wikipedia.org/wiki/Reece_James_(footballer,_born_1999)"},
}

func (fakeSquad) Players(context.Context) ([]external.Player, error) { return squad, nil }

func (fakeSquad) Player(_ context.Context, name string) (external.Player, error) {
	for _, p := range squad {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return external.Player{}, external.ErrNotFound
}

func (fakeSquad) Biography(_ context.Context, p external.Player) (external.Biography, error) {
	return external.Biography{Facts: []external.Fact{{Label: "Full name", Value: p.Name}}}, nil
}

type fakeEntities struct{ failing bool }

func (f fakeEntities) EntityID(_ context.Context, title string) (string, error) {
	if f.failing {
		return "", external.ErrUpstream
	}
	return "Q-" + title, nil
}

func (fakeEntities) Metadata(_ context.Context, id string) (external.Metadata, error) {
	m := external.Metadata{ID: id, CountryOfCitizenship: []string{"United Kingdom"}}
	if strings.Contains(id, "Reece") {
		m.TransfermarktID = "472423"
	}
	return m, nil
}

type fakeInjuries struct{}

func (fakeInjuries) Injuries(_ context.Context, id string) (external.InjuryHistory, error) {
	return external.InjuryHistory{
		Source: "https://www.transfermarkt.com/player/verletzungen/spieler/" + id,
		Records: []injury.Record{
			{Season: "24/25", Injury: "Hamstring injury", From: day(2024, 9, 1), Until: day(2024, 10, 1), Days: "30 days", GamesMissed: "5"},
			{Season: "23/24", Injury: "Hamstring injury", From: day(2023, 8, 14), Until: day(2023, 9, 20), Days: "37 days", GamesMissed: "6"},
			{Season: "22/23", Injury: "Knee injury", From: day(2022, 10, 11), Until: day(2022, 11, 20), Days: "40 days", GamesMissed: "8"},
		},
	}, nil
}

type fakeNews struct{}

func (fakeNews) Everything(_ context.Context, q string) ([]external.Article, error) {
	return []external.Article{{Source: "BBC", Title: q + " returns to training"}}, nil
}

type fakeCompleter struct {
	mu       sync.Mutex
	calls    int
	messages []analysis.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []analysis.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = messages
	return "keep the load steady", nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCompleter) lastUserMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1].Content
}
