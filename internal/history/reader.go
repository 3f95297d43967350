// Package history reads completed sessions back out of the store and
// enriches them for display and analysis.
package history

import (
	"context"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// DefaultLimit is used when a caller passes a non-positive limit.
const DefaultLimit = 20

type sessionsRepo interface {
	RecentSessions(ctx context.Context, limit int) ([]models.CompletedSession, error)
	FindSetsBySession(ctx context.Context, sessionID int64) ([]models.SetRecord, error)
	FindSetsByExercise(ctx context.Context, exerciseID int64) ([]models.ExerciseSet, error)
}

// Names resolves exercise ids to display names.
type Names interface {
	Name(ctx context.Context, exerciseID int64) (string, error)
}

// SessionOverview is a completed session with derived totals.
type SessionOverview struct {
	models.CompletedSession
	Volume          float64  `json:"volume"`
	DurationMinutes int64    `json:"duration_minutes"`
	Exercises       []string `json:"exercises"`
}

type Reader struct {
	repo         sessionsRepo
	names        Names
	defaultLimit int
}

// NewReader creates a Reader. defaultLimit applies when callers pass a
// non-positive limit.
func NewReader(repo sessionsRepo, names Names, defaultLimit int) *Reader {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &Reader{
		repo:         repo,
		names:        names,
		defaultLimit: defaultLimit,
	}
}

// RecentSessions returns the newest sessions, newest first, each with its
// total volume, whole-minute duration, and exercise names in first-seen order.
func (r *Reader) RecentSessions(ctx context.Context, limit int) ([]SessionOverview, error) {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	sessions, err := r.repo.RecentSessions(ctx, limit)
	if err != nil {
		return nil, err
	}

	resolved := make(map[int64]string)
	out := make([]SessionOverview, 0, len(sessions))
	for _, s := range sessions {
		sets, err := r.repo.FindSetsBySession(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Sets = sets

		o := SessionOverview{
			CompletedSession: s,
			Volume:           Volume(sets),
			DurationMinutes:  s.DurationSeconds / 60,
			Exercises:        []string{},
		}
		seen := make(map[int64]bool)
		for _, set := range sets {
			if seen[set.ExerciseID] {
				continue
			}
			seen[set.ExerciseID] = true

			name, ok := resolved[set.ExerciseID]
			if !ok {
				name, err = r.names.Name(ctx, set.ExerciseID)
				if err != nil {
					return nil, fmt.Errorf("resolving exercise %d: %w", set.ExerciseID, err)
				}
				resolved[set.ExerciseID] = name
			}
			o.Exercises = append(o.Exercises, name)
		}
		out = append(out, o)
	}
	return out, nil
}

// ExerciseHistory returns every set logged for the exercise, oldest session
// first, annotated with the owning session's id and date.
func (r *Reader) ExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseSet, error) {
	return r.repo.FindSetsByExercise(ctx, exerciseID)
}

// Volume sums weight × reps over sets.
func Volume(sets []models.SetRecord) float64 {
	var v float64
	for _, s := range sets {
		v += s.Volume()
	}
	return v
}
