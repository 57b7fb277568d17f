package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
	"github.com/okian/matchload/internal/domain/recovery"
	"github.com/okian/matchload/pkg/logger"
)

var errNoData = errors.New("no data")

type fakeDashboard struct {
	err error

	gotSeason    string
	gotLength    int
	gotNormalize bool
	gotCategory  string
}

func (f *fakeDashboard) Seasons(context.Context) ([]string, error) {
	return []string{"2023/2024"}, f.err
}

func (f *fakeDashboard) CycleDurations(_ context.Context, season string) ([]int, error) {
	f.gotSeason = season
	return []int{3, 7}, f.err
}

func (f *fakeDashboard) Cycles(_ context.Context, season string, length int, normalize bool) (loadcalendar.Result, error) {
	f.gotSeason, f.gotLength, f.gotNormalize = season, length, normalize
	return loadcalendar.Result{
		Length:  length,
		KPIs:    []string{gps.Distance},
		Matches: 4,
		Groups: []loadcalendar.Group{
			{Label: loadcalendar.Day(1), Rows: 4, Means: map[string]float64{gps.Distance: 3900}},
			{Label: loadcalendar.NextMatch, Rows: 3, Means: map[string]float64{gps.Distance: 10400}},
		},
	}, f.err
}

func (f *fakeDashboard) LastMatch(context.Context, string) (gps.LastMatchSummary, error) {
	delta := -120.0
	return gps.LastMatchSummary{
		Match:   "Chelsea v Arsenal",
		Session: gps.Session{Date: time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC)},
		KPIs:    []gps.KPIDelta{{Key: gps.Distance, Value: 10250, Delta: &delta}},
	}, f.err
}

func (f *fakeDashboard) Recovery(_ context.Context, category string) (recovery.Summary, error) {
	f.gotCategory = category
	return recovery.Summary{
		Category:  "total",
		Composite: recovery.Band{Min: -1, Max: 1, Low: -0.4, High: 0.4},
		Green:     5,
		White:     2,
		Red:       1,
	}, f.err
}

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestTools(t *testing.T) {
	Convey("Given an MCP server over a dashboard", t, func() {
		ctx := context.Background()
		dash := &fakeDashboard{}
		s := NewServer(dash, "")

		Convey("cycle_durations lists seasons and lengths", func() {
			_, out, err := s.handleCycleDurations(ctx, nil, seasonInput{Season: "2023/2024"})
			So(err, ShouldBeNil)
			So(out.Seasons, ShouldResemble, []string{"2023/2024"})
			So(out.Durations, ShouldResemble, []int{3, 7})
			So(dash.gotSeason, ShouldEqual, "2023/2024")
		})

		Convey("cycle_averages renders labels as text", func() {
			_, out, err := s.handleCycleAverages(ctx, nil, cycleInput{Season: "2023/2024", Length: 7, Normalize: true})
			So(err, ShouldBeNil)
			So(dash.gotLength, ShouldEqual, 7)
			So(dash.gotNormalize, ShouldBeTrue)
			So(out.Matches, ShouldEqual, 4)
			So(out.Groups, ShouldHaveLength, 2)
			So(out.Groups[0].Label, ShouldEqual, "1")
			So(out.Groups[1].Label, ShouldEqual, "next match")
			So(out.Groups[1].Means[gps.Distance], ShouldEqual, 10400)
		})

		Convey("last_match formats the date", func() {
			_, out, err := s.handleLastMatch(ctx, nil, seasonInput{})
			So(err, ShouldBeNil)
			So(out.Date, ShouldEqual, "2024-05-19")
			So(out.KPIs, ShouldHaveLength, 1)
			So(*out.KPIs[0].Delta, ShouldEqual, -120)
		})

		Convey("recovery_summary flattens the band", func() {
			_, out, err := s.handleRecoverySummary(ctx, nil, recoveryInput{Category: "sleep"})
			So(err, ShouldBeNil)
			So(dash.gotCategory, ShouldEqual, "sleep")
			So(out.Low, ShouldEqual, -0.4)
			So(out.High, ShouldEqual, 0.4)
			So(out.Green, ShouldEqual, 5)
			So(out.Red, ShouldEqual, 1)
		})

		Convey("Failures carry the tool name", func() {
			dash.err = errNoData
			_, _, err := s.handleCycleAverages(ctx, nil, cycleInput{Length: 7})
			So(errors.Is(err, errNoData), ShouldBeTrue)
			So(err.Error(), ShouldStartWith, "cycle_averages:")
		})
	})
}

func TestServerOverTransport(t *testing.T) {
	Convey("Given a client connected in memory", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s := NewServer(&fakeDashboard{}, "test")
		clientTransport, serverTransport := mcp.NewInMemoryTransports()
		ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
		So(err, ShouldBeNil)
		defer ss.Close()

		client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
		cs, err := client.Connect(ctx, clientTransport, nil)
		So(err, ShouldBeNil)
		defer cs.Close()

		Convey("All tools are listed", func() {
			res, err := cs.ListTools(ctx, nil)
			So(err, ShouldBeNil)
			names := make([]string, 0, len(res.Tools))
			for _, tool := range res.Tools {
				names = append(names, tool.Name)
			}
			So(names, ShouldContain, "cycle_durations")
			So(names, ShouldContain, "cycle_averages")
			So(names, ShouldContain, "last_match")
			So(names, ShouldContain, "recovery_summary")
		})

		Convey("A tool call returns structured content", func() {
			res, err := cs.CallTool(ctx, &mcp.CallToolParams{
				Name:      "cycle_averages",
				Arguments: map[string]any{"season": "2023/2024", "length": 7},
			})
			So(err, ShouldBeNil)
			So(res.IsError, ShouldBeFalse)
			out, ok := res.StructuredContent.(map[string]any)
			So(ok, ShouldBeTrue)
			So(out["length"], ShouldEqual, float64(7))
		})
	})
}
