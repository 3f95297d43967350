package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/claude/liftlog/internal/models"
)

type prefilled struct {
	weight string
	reps   string
}

// previousSets returns the sets of the most recent session of r, grouped by
// exercise in recorded order. A routine never performed yields nil.
func (e *Engine) previousSets(ctx context.Context, r *models.Routine) (map[int64][]models.SetRecord, error) {
	var (
		sessions []models.CompletedSession
		err      error
	)
	if e.opts.MatchByRoutineID {
		sessions, err = e.store.FindSessionsByRoutine(ctx, r.ID, 1)
	} else {
		sessions, err = e.store.FindSessionsByName(ctx, r.Name, 1)
	}
	if err != nil {
		return nil, fmt.Errorf("finding previous %q session: %w", r.Name, err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}

	sets, err := e.store.FindSetsBySession(ctx, sessions[0].ID)
	if err != nil {
		return nil, fmt.Errorf("loading sets of session %d: %w", sessions[0].ID, err)
	}
	byExercise := make(map[int64][]models.SetRecord)
	for _, s := range sets {
		byExercise[s.ExerciseID] = append(byExercise[s.ExerciseID], s)
	}
	return byExercise, nil
}

// prefill builds n sets from last time's sets for one exercise, starting at
// position start: same position first, then the last recorded set, then
// target reps with an empty weight.
func prefill(previous []models.SetRecord, start, n, targetReps int) []prefilled {
	out := make([]prefilled, 0, max(n, 0))
	for i := 0; i < n; i++ {
		if len(previous) == 0 {
			out = append(out, prefilled{reps: strconv.Itoa(targetReps)})
			continue
		}
		src := previous[min(start+i, len(previous)-1)]
		out = append(out, prefilled{
			weight: formatWeight(src.Weight),
			reps:   strconv.Itoa(src.Reps),
		})
	}
	return out
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
