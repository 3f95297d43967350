package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// QuickWorkoutName names sessions started without a routine.
const QuickWorkoutName = "Quick Workout"

// ErrSessionRunning is returned by Start while another session is live.
var ErrSessionRunning = errors.New("a workout session is already running")

// Store is the persistence the engine reads pre-fill history from and
// finalizes sessions into.
type Store interface {
	GetRoutine(ctx context.Context, id int64) (*models.Routine, error)
	FindSessionsByName(ctx context.Context, name string, limit int) ([]models.CompletedSession, error)
	FindSessionsByRoutine(ctx context.Context, routineID int64, limit int) ([]models.CompletedSession, error)
	FindSetsBySession(ctx context.Context, sessionID int64) ([]models.SetRecord, error)
	WithSessionTx(ctx context.Context, fn func(w storage.SessionWriter) error) error
}

// Exercises resolves exercise ids to catalog entries.
type Exercises interface {
	GetExercise(ctx context.Context, id int64) (*models.Exercise, error)
}

// Recorder receives lifecycle events for metrics.
type Recorder interface {
	SessionStarted()
	SessionFinished(duration time.Duration, sets int)
	SessionCancelled()
	SetsSkipped(n int)
	FinishFailed()
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()                    {}
func (nopRecorder) SessionFinished(time.Duration, int) {}
func (nopRecorder) SessionCancelled()                  {}
func (nopRecorder) SetsSkipped(int)                    {}
func (nopRecorder) FinishFailed()                      {}

// Options tunes engine defaults.
type Options struct {
	// DefaultWeight and DefaultReps seed a set added for an exercise that has
	// no sets yet.
	DefaultWeight string
	DefaultReps   string
	// MatchByRoutineID looks up the previous session by routine id instead
	// of by routine name.
	MatchByRoutineID bool
	Metrics          Recorder
	Now              func() time.Time
}

// Engine owns at most one live session and drives it through its lifecycle.
// It does no locking; callers serialize access.
type Engine struct {
	store     Store
	exercises Exercises
	opts      Options
	log       *slog.Logger

	current *Active
}

// New creates an idle engine.
func New(store Store, exercises Exercises, opts Options, log *slog.Logger) *Engine {
	if opts.DefaultWeight == "" {
		opts.DefaultWeight = "0"
	}
	if opts.DefaultReps == "" {
		opts.DefaultReps = "10"
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{store: store, exercises: exercises, opts: opts, log: log}
}

// Running reports whether a session is live.
func (e *Engine) Running() bool {
	return e.current.live()
}

// Current returns the live session handle, or nil when idle.
func (e *Engine) Current() *Active {
	return e.current
}

// Elapsed returns the live session's running time, or 0 when idle.
func (e *Engine) Elapsed() time.Duration {
	return e.current.Elapsed(e.opts.Now())
}

// Start begins a session. With a routine id the session is built from the
// routine's targets and pre-filled from the previous session of that routine;
// without one it starts empty as a quick workout.
func (e *Engine) Start(ctx context.Context, routineID *int64) (*Active, error) {
	if e.current.live() {
		return nil, ErrSessionRunning
	}

	a := &Active{
		ID:        uuid.New(),
		StartedAt: e.opts.Now(),
		Name:      QuickWorkoutName,
		Sets:      []ActiveSet{},
		Running:   true,
	}

	if routineID != nil {
		r, err := e.store.GetRoutine(ctx, *routineID)
		if err != nil {
			return nil, fmt.Errorf("loading routine %d: %w", *routineID, err)
		}
		id := r.ID
		a.RoutineID = &id
		a.Name = r.Name

		previous, err := e.previousSets(ctx, r)
		if err != nil {
			return nil, err
		}

		// A routine may list an exercise more than once; numbering and
		// pre-fill positions continue across its lines.
		position := make(map[int64]int)
		for _, target := range r.Exercises {
			ex, err := e.exercises.GetExercise(ctx, target.ExerciseID)
			if errors.Is(err, storage.ErrNotFound) {
				e.log.Warn("routine references unknown exercise, skipping",
					"routine_id", r.ID, "exercise_id", target.ExerciseID)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("loading exercise %d: %w", target.ExerciseID, err)
			}
			offset := position[ex.ID]
			for i, p := range prefill(previous[target.ExerciseID], offset, target.TargetSets, target.TargetReps) {
				position[ex.ID] = offset + i + 1
				a.Sets = append(a.Sets, ActiveSet{
					ExerciseID:    ex.ID,
					ExerciseName:  ex.Name,
					ExerciseImage: ex.Image(),
					SetNumber:     offset + i + 1,
					Weight:        p.weight,
					Reps:          p.reps,
					Type:          models.SetNormal,
				})
			}
		}
	}

	e.current = a
	e.opts.Metrics.SessionStarted()
	e.log.Info("workout session started", "session", a.ID, "name", a.Name, "sets", len(a.Sets))
	return a, nil
}

// AddSet adds a set for the exercise to the live session and returns its
// index, or -1 when idle. The image is taken from the catalog when available.
func (e *Engine) AddSet(ctx context.Context, exerciseID int64, exerciseName string) int {
	if !e.current.live() {
		return -1
	}
	var image string
	ex, err := e.exercises.GetExercise(ctx, exerciseID)
	switch {
	case err == nil:
		image = ex.Image()
	case !errors.Is(err, storage.ErrNotFound):
		e.log.Warn("exercise lookup failed", "exercise_id", exerciseID, "error", err)
	}
	return e.current.addSet(exerciseID, exerciseName, image, e.opts.DefaultWeight, e.opts.DefaultReps)
}

// RemoveSet removes the set at index from the live session.
func (e *Engine) RemoveSet(index int) bool {
	return e.current.RemoveSet(index)
}

// UpdateSet changes one field of the set at index in the live session.
func (e *Engine) UpdateSet(index int, field Field, value string) bool {
	return e.current.UpdateSet(index, field, value)
}

// ToggleComplete flips the completed flag of the set at index.
func (e *Engine) ToggleComplete(index int) bool {
	return e.current.ToggleComplete(index)
}

// Cancel discards the live session without persisting anything.
func (e *Engine) Cancel() {
	a := e.current
	if !a.live() {
		return
	}
	a.Running = false
	e.current = nil
	e.opts.Metrics.SessionCancelled()
	e.log.Info("workout session cancelled", "session", a.ID)
}
