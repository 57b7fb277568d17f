package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samber/lo"

	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
	"github.com/okian/matchload/pkg/logger"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cycle_durations",
		Description: "List the seasons and the match cycle lengths (days between matches) played in a season",
	}, s.handleCycleDurations)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "cycle_averages",
		Description: "Average GPS load per day of the match cycle for cycles of one length",
	}, s.handleCycleAverages)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "last_match",
		Description: "Headline KPIs of the last match of a season and the change from the previous match",
	}, s.handleLastMatch)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "recovery_summary",
		Description: "Green, white and red day counts for a recovery category",
	}, s.handleRecoverySummary)
}

// Tool input/output types

type seasonInput struct {
	Season string `json:"season,omitempty" jsonschema:"season such as 2023/2024; empty means every season"`
}

type durationsOutput struct {
	Seasons   []string `json:"seasons"`
	Season    string   `json:"season,omitempty"`
	Durations []int    `json:"durations"`
}

type cycleInput struct {
	Season    string `json:"season,omitempty" jsonschema:"season such as 2023/2024; empty means every season"`
	Length    int    `json:"length" jsonschema:"cycle length in days"`
	Normalize bool   `json:"normalize,omitempty" jsonschema:"divide each KPI by the session duration"`
}

type cycleGroup struct {
	Label string             `json:"label"`
	Rows  int                `json:"rows"`
	Means map[string]float64 `json:"means"`
}

type cycleOutput struct {
	Length  int          `json:"length"`
	Matches int          `json:"matches"`
	KPIs    []string     `json:"kpis"`
	Groups  []cycleGroup `json:"groups"`
}

type kpiDelta struct {
	Key   string   `json:"key"`
	Value float64  `json:"value"`
	Delta *float64 `json:"delta,omitempty"`
}

type lastMatchOutput struct {
	Match string     `json:"match"`
	Date  string     `json:"date"`
	KPIs  []kpiDelta `json:"kpis"`
}

type recoveryInput struct {
	Category string `json:"category,omitempty" jsonschema:"recovery category such as sleep or soreness; empty means total"`
}

type recoveryOutput struct {
	Category string  `json:"category"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Green    int     `json:"green_days"`
	White    int     `json:"white_days"`
	Red      int     `json:"red_days"`
}

// Tool handlers

func (s *Server) handleCycleDurations(ctx context.Context, _ *mcp.CallToolRequest, in seasonInput) (*mcp.CallToolResult, durationsOutput, error) {
	seasons, err := s.dash.Seasons(ctx)
	if err != nil {
		return nil, durationsOutput{}, s.fail(ctx, "cycle_durations", err)
	}
	durations, err := s.dash.CycleDurations(ctx, in.Season)
	if err != nil {
		return nil, durationsOutput{}, s.fail(ctx, "cycle_durations", err)
	}
	return nil, durationsOutput{Seasons: seasons, Season: in.Season, Durations: durations}, nil
}

func (s *Server) handleCycleAverages(ctx context.Context, _ *mcp.CallToolRequest, in cycleInput) (*mcp.CallToolResult, cycleOutput, error) {
	res, err := s.dash.Cycles(ctx, in.Season, in.Length, in.Normalize)
	if err != nil {
		return nil, cycleOutput{}, s.fail(ctx, "cycle_averages", err)
	}
	out := cycleOutput{
		Length:  res.Length,
		Matches: res.Matches,
		KPIs:    res.KPIs,
		Groups: lo.Map(res.Groups, func(g loadcalendar.Group, _ int) cycleGroup {
			return cycleGroup{Label: g.Label.String(), Rows: g.Rows, Means: g.Means}
		}),
	}
	return nil, out, nil
}

func (s *Server) handleLastMatch(ctx context.Context, _ *mcp.CallToolRequest, in seasonInput) (*mcp.CallToolResult, lastMatchOutput, error) {
	sum, err := s.dash.LastMatch(ctx, in.Season)
	if err != nil {
		return nil, lastMatchOutput{}, s.fail(ctx, "last_match", err)
	}
	out := lastMatchOutput{
		Match: sum.Match,
		Date:  sum.Session.Date.Format(time.DateOnly),
		KPIs: lo.Map(sum.KPIs, func(k gps.KPIDelta, _ int) kpiDelta {
			return kpiDelta{Key: k.Key, Value: k.Value, Delta: k.Delta}
		}),
	}
	return nil, out, nil
}

func (s *Server) handleRecoverySummary(ctx context.Context, _ *mcp.CallToolRequest, in recoveryInput) (*mcp.CallToolResult, recoveryOutput, error) {
	sum, err := s.dash.Recovery(ctx, in.Category)
	if err != nil {
		return nil, recoveryOutput{}, s.fail(ctx, "recovery_summary", err)
	}
	return nil, recoveryOutput{
		Category: sum.Category,
		Low:      sum.Composite.Low,
		High:     sum.Composite.High,
		Green:    sum.Green,
		White:    sum.White,
		Red:      sum.Red,
	}, nil
}

func (s *Server) fail(ctx context.Context, tool string, err error) error {
	s.logger.Warn(ctx, "tool failed", logger.String("tool", tool), logger.Error(err))
	return fmt.Errorf("%s: %w", tool, err)
}
