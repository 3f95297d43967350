// Package mcp exposes training history and session summaries as MCP tools.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftLog strength training log. Query completed workout sessions, per-exercise set history, session summaries with personal records, and the exercise catalog."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetRecentSessions, Handler: h.getRecentSessions},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetSessionSummary, Handler: h.getSessionSummary},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resRecentSessions = mcp.NewResource(
	"liftlog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("The most recent completed workout sessions with volume, duration and exercises"),
	mcp.WithMIMEType("application/json"),
)
