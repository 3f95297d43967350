package session

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// Finish persists the live session and returns the new session id. Only
// completed sets are kept. The header and its set records are written in a
// single transaction; on failure the live session is left untouched so the
// caller can retry. Finish on an idle engine returns 0 and no error.
func (e *Engine) Finish(ctx context.Context, notes string) (int64, error) {
	a := e.current
	if !a.live() {
		return 0, nil
	}

	duration := a.Elapsed(e.opts.Now())
	session := models.CompletedSession{
		RoutineID:       a.RoutineID,
		Name:            a.Name,
		Date:            a.StartedAt,
		DurationSeconds: int64(duration / time.Second),
		Notes:           notes,
		Status:          models.SessionStatusCompleted,
	}

	var records []models.SetRecord
	skipped := 0
	for _, s := range a.Sets {
		if !s.Completed {
			continue
		}
		if s.ExerciseID <= 0 {
			e.log.Warn("skipping set without a valid exercise",
				"session", a.ID, "exercise", s.ExerciseName, "set_number", s.SetNumber)
			skipped++
			continue
		}
		records = append(records, models.SetRecord{
			ExerciseID: s.ExerciseID,
			SetNumber:  s.SetNumber,
			Weight:     ParseWeight(s.Weight),
			Reps:       ParseReps(s.Reps),
		})
	}

	var id int64
	err := e.store.WithSessionTx(ctx, func(w storage.SessionWriter) error {
		var err error
		id, err = w.CreateSession(ctx, session)
		if err != nil {
			return err
		}
		for _, r := range records {
			r.SessionID = id
			if _, err := w.CreateSetRecord(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		e.opts.Metrics.FinishFailed()
		e.log.Error("finishing workout session", "session", a.ID, "error", err)
		return 0, fmt.Errorf("finishing session: %w", err)
	}

	a.Running = false
	e.current = nil
	e.opts.Metrics.SessionFinished(duration, len(records))
	if skipped > 0 {
		e.opts.Metrics.SetsSkipped(skipped)
	}
	e.log.Info("workout session finished",
		"session", a.ID, "session_id", id, "sets", len(records), "duration", duration.Round(time.Second))
	return id, nil
}
