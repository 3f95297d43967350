package models

import "time"

// SessionStatusCompleted is the only status a finished session is written with.
const SessionStatusCompleted = "completed"

// Exercise is a row of the exercises table.
type Exercise struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	MuscleGroup  string   `json:"muscle_group"`
	Type         string   `json:"type"`
	Instructions []string `json:"instructions"`
	Images       []string `json:"images"`
	Custom       bool     `json:"custom"`
}

// Image returns the first media reference, or "" when the exercise has none.
func (e Exercise) Image() string {
	if len(e.Images) == 0 {
		return ""
	}
	return e.Images[0]
}

// Routine is a named, ordered list of exercise targets.
type Routine struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Program   string            `json:"program,omitempty"`
	Exercises []RoutineExercise `json:"exercises"`
}

// RoutineExercise is one target line of a routine.
type RoutineExercise struct {
	ExerciseID int64 `json:"exercise_id"`
	Position   int   `json:"position"`
	TargetSets int   `json:"target_sets"`
	TargetReps int   `json:"target_reps"`
}

// CompletedSession is a row of the completed_sessions table plus, when loaded, its sets.
type CompletedSession struct {
	ID              int64       `json:"id"`
	RoutineID       *int64      `json:"routine_id,omitempty"`
	Name            string      `json:"name"`
	Date            time.Time   `json:"date"`
	DurationSeconds int64       `json:"duration_seconds"`
	Notes           string      `json:"notes"`
	Status          string      `json:"status"`
	Sets            []SetRecord `json:"sets,omitempty"`
}

// SetRecord is a row of the set_records table.
type SetRecord struct {
	ID         int64    `json:"id"`
	SessionID  int64    `json:"session_id"`
	ExerciseID int64    `json:"exercise_id"`
	SetNumber  int      `json:"set_number"`
	Weight     float64  `json:"weight"`
	Reps       int      `json:"reps"`
	Intensity  *float64 `json:"intensity,omitempty"`
}

// Volume is weight × reps.
func (s SetRecord) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// ExerciseSet is a SetRecord annotated with the date of the session that owns it.
type ExerciseSet struct {
	SetRecord
	SessionDate time.Time `json:"session_date"`
}
