package summary

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyzer_FinishedSessions runs two sessions through the engine against
// SQLite and summarizes the second one.
func TestAnalyzer_FinishedSessions(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	benchID, err := db.CreateExercise(ctx, models.Exercise{Name: "Bench Press"})
	require.NoError(t, err)
	routineID, err := db.CreateRoutine(ctx, models.Routine{
		Name:      "Push",
		Exercises: []models.RoutineExercise{{ExerciseID: benchID, TargetSets: 2, TargetReps: 5}},
	})
	require.NoError(t, err)

	now := time.Date(2026, 8, 3, 18, 0, 0, 0, time.UTC)
	cat := catalog.New(db, 1, log)
	engine := session.New(db, cat, session.Options{Now: func() time.Time { return now }}, log)

	run := func(weights ...string) int64 {
		t.Helper()
		_, err := engine.Start(ctx, &routineID)
		require.NoError(t, err)
		for i, w := range weights {
			require.True(t, engine.UpdateSet(i, session.FieldWeight, w))
			require.True(t, engine.ToggleComplete(i))
		}
		now = now.Add(40 * time.Minute)
		id, err := engine.Finish(ctx, "")
		require.NoError(t, err)
		now = now.AddDate(0, 0, 2)
		return id
	}

	run("60", "60")
	second := run("62.5", "57.5")

	analyzer := NewAnalyzer(db, history.NewReader(db, cat, 0), cat)
	sum, err := analyzer.Summarize(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, "Push", sum.Name)
	assert.Equal(t, int64(2400), sum.DurationSeconds)
	assert.Equal(t, 2, sum.TotalSets)
	assert.Equal(t, 600.0, sum.TotalVolume)
	require.Len(t, sum.Exercises, 1)

	ex := sum.Exercises[0]
	assert.Equal(t, "Bench Press", ex.Name)
	assert.Equal(t, 62.5, ex.BestWeight)
	assert.True(t, ex.IsPR)
	assert.Equal(t, ImprovementHeavier, ex.Improvement)
	assert.Equal(t, 1, sum.PRCount)
}
