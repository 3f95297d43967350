// Package summary derives per-session statistics from stored history:
// volume, personal records and session-over-session improvement.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// Improvement tags, compared against the immediately preceding session.
const (
	ImprovementHeavier    = "Heavier"
	ImprovementMoreVolume = "More Volume"
)

type sessionsRepo interface {
	GetSession(ctx context.Context, id int64) (*models.CompletedSession, error)
}

type historyReader interface {
	ExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseSet, error)
}

type exerciseNames interface {
	Name(ctx context.Context, exerciseID int64) (string, error)
}

// ExerciseSummary holds one exercise's performance within a session.
type ExerciseSummary struct {
	ExerciseID   int64   `json:"exercise_id"`
	Name         string  `json:"name"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	Volume       float64 `json:"volume"`
	BestWeight   float64 `json:"best_weight"`
	Estimated1RM float64 `json:"estimated_1rm"`
	IsPR         bool    `json:"is_pr"`
	Improvement  string  `json:"improvement,omitempty"`
}

// Summary is the complete post-session report.
type Summary struct {
	SessionID       int64             `json:"session_id"`
	Name            string            `json:"name"`
	Date            time.Time         `json:"date"`
	DurationSeconds int64             `json:"duration_seconds"`
	TotalVolume     float64           `json:"total_volume"`
	TotalSets       int               `json:"total_sets"`
	PRCount         int               `json:"pr_count"`
	Exercises       []ExerciseSummary `json:"exercises"`
}

type Analyzer struct {
	sessions sessionsRepo
	history  historyReader
	names    exerciseNames
}

func NewAnalyzer(sessions sessionsRepo, history historyReader, names exerciseNames) *Analyzer {
	return &Analyzer{
		sessions: sessions,
		history:  history,
		names:    names,
	}
}

// Summarize builds the summary of a stored session. Each exercise is compared
// with its full history minus this session for PRs, and with the closest
// earlier session (highest lower id) for the improvement tag.
func (a *Analyzer) Summarize(ctx context.Context, sessionID int64) (*Summary, error) {
	s, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		SessionID:       s.ID,
		Name:            s.Name,
		Date:            s.Date,
		DurationSeconds: s.DurationSeconds,
		TotalSets:       len(s.Sets),
		Exercises:       []ExerciseSummary{},
	}

	var order []int64
	byExercise := make(map[int64][]models.SetRecord)
	for _, set := range s.Sets {
		sum.TotalVolume += set.Volume()
		if _, ok := byExercise[set.ExerciseID]; !ok {
			order = append(order, set.ExerciseID)
		}
		byExercise[set.ExerciseID] = append(byExercise[set.ExerciseID], set)
	}

	for _, exerciseID := range order {
		es, err := a.summarizeExercise(ctx, s.ID, exerciseID, byExercise[exerciseID])
		if err != nil {
			return nil, err
		}
		if es.IsPR {
			sum.PRCount++
		}
		sum.Exercises = append(sum.Exercises, es)
	}
	return sum, nil
}

func (a *Analyzer) summarizeExercise(ctx context.Context, sessionID, exerciseID int64, sets []models.SetRecord) (ExerciseSummary, error) {
	name, err := a.names.Name(ctx, exerciseID)
	if err != nil {
		return ExerciseSummary{}, fmt.Errorf("resolving exercise %d: %w", exerciseID, err)
	}
	es := ExerciseSummary{ExerciseID: exerciseID, Name: name, Sets: len(sets)}
	for _, set := range sets {
		es.Reps += set.Reps
		es.Volume += set.Volume()
		es.BestWeight = max(es.BestWeight, set.Weight)
		es.Estimated1RM = max(es.Estimated1RM, EstimateOneRepMax(set.Weight, set.Reps))
	}

	history, err := a.history.ExerciseHistory(ctx, exerciseID)
	if err != nil {
		return ExerciseSummary{}, fmt.Errorf("loading history of exercise %d: %w", exerciseID, err)
	}

	var priorMax float64
	var preceding int64
	for _, h := range history {
		if h.SessionID >= sessionID {
			continue
		}
		priorMax = max(priorMax, h.Weight)
		preceding = max(preceding, h.SessionID)
	}
	es.IsPR = priorMax > 0 && es.BestWeight > priorMax

	if preceding == 0 {
		return es, nil
	}
	var prevBest, prevVolume float64
	for _, h := range history {
		if h.SessionID != preceding {
			continue
		}
		prevBest = max(prevBest, h.Weight)
		prevVolume += h.Volume()
	}
	switch {
	case es.BestWeight > prevBest:
		es.Improvement = ImprovementHeavier
	case es.Volume > prevVolume:
		es.Improvement = ImprovementMoreVolume
	}
	return es, nil
}
