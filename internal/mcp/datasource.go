package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
)

// DataSource abstracts the data layer for MCP tools. Both Local (direct
// database access) and HTTPClient (a running liftlog server) satisfy it.
type DataSource interface {
	RecentSessions(ctx context.Context, limit int) ([]history.SessionOverview, error)
	ExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseSet, error)
	Summarize(ctx context.Context, sessionID int64) (*summary.Summary, error)
	ListExercises(ctx context.Context, muscleGroup string) ([]models.Exercise, error)
}

// Local serves MCP tools straight from the database.
type Local struct {
	*history.Reader
	*summary.Analyzer
	db *storage.DB
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wires a DataSource over an open database.
func NewLocal(db *storage.DB, reader *history.Reader, analyzer *summary.Analyzer) *Local {
	return &Local{Reader: reader, Analyzer: analyzer, db: db}
}

func (l *Local) ListExercises(ctx context.Context, muscleGroup string) ([]models.Exercise, error) {
	return l.db.ListExercises(ctx, muscleGroup)
}
