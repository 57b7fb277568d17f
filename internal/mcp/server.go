// Package mcp exposes the load calendar and recovery views as MCP tools over
// stdio.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/matchload/internal/domain/gps"
	"github.com/okian/matchload/internal/domain/loadcalendar"
	"github.com/okian/matchload/internal/domain/recovery"
	"github.com/okian/matchload/pkg/logger"
)

// Dashboard is the subset of the service the tools read from.
type Dashboard interface {
	Seasons(ctx context.Context) ([]string, error)
	CycleDurations(ctx context.Context, season string) ([]int, error)
	Cycles(ctx context.Context, season string, length int, normalize bool) (loadcalendar.Result, error)
	LastMatch(ctx context.Context, season string) (gps.LastMatchSummary, error)
	Recovery(ctx context.Context, category string) (recovery.Summary, error)
}

// Server wraps the MCP server with dashboard access.
type Server struct {
	mcpServer *mcp.Server
	dash      Dashboard
	logger    logger.Logger
}

// NewServer creates a new MCP server over dash.
func NewServer(dash Dashboard, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: "matchload", Version: version}, nil),
		dash:      dash,
		logger:    logger.Named("mcp"),
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio until ctx is done or the client hangs up.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info(ctx, "mcp server listening on stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
