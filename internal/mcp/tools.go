package mcp

import (
	"context"
	"errors"

	"github.com/claude/liftlog/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("List the most recent completed workout sessions, newest first. Each includes total volume (kg x reps), duration in minutes and the exercises performed."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions. Defaults to the configured history limit.")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Every set ever logged for one exercise, oldest session first, with weight, reps and the session date."),
	mcp.WithNumber("exercise_id", mcp.Required(), mcp.Description("Exercise ID (see list_exercises)")),
)

var toolGetSessionSummary = mcp.NewTool("get_session_summary",
	mcp.WithDescription("Summary of a completed session: per-exercise best weight, estimated 1RM, personal records and improvement over the previous session."),
	mcp.WithNumber("session_id", mcp.Required(), mcp.Description("Completed session ID (see get_recent_sessions)")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog, including custom exercises."),
	mcp.WithString("muscle_group", mcp.Description("Filter by muscle group (e.g. chest, back, legs)")),
)

// --- Tool handlers ---

func (h *handlers) getRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}

	sessions, err := h.ds.RecentSessions(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_recent_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sessions)
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("exercise_id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	sets, err := h.ds.ExerciseHistory(ctx, int64(id))
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{
		"exercise_id": id,
		"sets":        sets,
		"count":       len(sets),
	})
}

func (h *handlers) getSessionSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("session_id")
	if err != nil || id <= 0 {
		return mcp.NewToolResultError("session_id parameter is required"), nil
	}

	sum, err := h.ds.Summarize(ctx, int64(id))
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("session not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_session_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(sum)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx, req.GetString("muscle_group", ""))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
