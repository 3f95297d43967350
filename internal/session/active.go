// Package session implements the live workout session: its in-memory state
// machine, history pre-fill, and the transactional finalizer.
package session

import (
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Field names an editable attribute of an ActiveSet.
type Field string

const (
	FieldWeight Field = "weight"
	FieldReps   Field = "reps"
	FieldType   Field = "type"
)

// ActiveSet is one set of a live session. Weight and reps are raw input
// buffers; they are parsed only when the session is finished.
type ActiveSet struct {
	ExerciseID    int64          `json:"exercise_id"`
	ExerciseName  string         `json:"exercise_name"`
	ExerciseImage string         `json:"exercise_image,omitempty"`
	SetNumber     int            `json:"set_number"`
	Weight        string         `json:"weight"`
	Reps          string         `json:"reps"`
	Completed     bool           `json:"completed"`
	Type          models.SetType `json:"type"`
}

// Active is the handle of a live session. Sets form one flat sequence in
// which each exercise's sets are contiguous and numbered 1..N.
type Active struct {
	ID        uuid.UUID   `json:"id"`
	StartedAt time.Time   `json:"started_at"`
	RoutineID *int64      `json:"routine_id,omitempty"`
	Name      string      `json:"name"`
	Sets      []ActiveSet `json:"sets"`
	Running   bool        `json:"running"`
}

func (a *Active) live() bool {
	return a != nil && a.Running
}

func (a *Active) inRange(index int) bool {
	return a.live() && index >= 0 && index < len(a.Sets)
}

// Elapsed returns the wall-clock time since the session started.
func (a *Active) Elapsed(now time.Time) time.Duration {
	if !a.live() {
		return 0
	}
	if d := now.Sub(a.StartedAt); d > 0 {
		return d
	}
	return 0
}

// addSet inserts a set for exerciseID right after that exercise's last set,
// copying its weight and reps, or appends one with the given defaults. It
// returns the new set's index, or -1 if the session is not live.
func (a *Active) addSet(exerciseID int64, name, image, defaultWeight, defaultReps string) int {
	if !a.live() {
		return -1
	}

	last, maxNumber := -1, 0
	for i, s := range a.Sets {
		if s.ExerciseID != exerciseID {
			continue
		}
		last = i
		if s.SetNumber > maxNumber {
			maxNumber = s.SetNumber
		}
	}

	set := ActiveSet{
		ExerciseID:    exerciseID,
		ExerciseName:  name,
		ExerciseImage: image,
		SetNumber:     maxNumber + 1,
		Weight:        defaultWeight,
		Reps:          defaultReps,
		Type:          models.SetNormal,
	}
	if last < 0 {
		a.Sets = append(a.Sets, set)
		return len(a.Sets) - 1
	}

	prev := a.Sets[last]
	set.Weight, set.Reps = prev.Weight, prev.Reps
	if set.ExerciseImage == "" {
		set.ExerciseImage = prev.ExerciseImage
	}
	at := last + 1
	a.Sets = append(a.Sets, ActiveSet{})
	copy(a.Sets[at+1:], a.Sets[at:])
	a.Sets[at] = set
	return at
}

// RemoveSet deletes the set at index and renumbers the remaining sets of its
// exercise 1..N. It reports whether a set was removed.
func (a *Active) RemoveSet(index int) bool {
	if !a.inRange(index) {
		return false
	}
	exerciseID := a.Sets[index].ExerciseID
	a.Sets = append(a.Sets[:index], a.Sets[index+1:]...)

	n := 0
	for i := range a.Sets {
		if a.Sets[i].ExerciseID == exerciseID {
			n++
			a.Sets[i].SetNumber = n
		}
	}
	return true
}

// UpdateSet overwrites one field of the set at index. Weight and reps are
// stored verbatim; the type field only accepts a known set type.
func (a *Active) UpdateSet(index int, field Field, value string) bool {
	if !a.inRange(index) {
		return false
	}
	s := &a.Sets[index]
	switch field {
	case FieldWeight:
		s.Weight = value
	case FieldReps:
		s.Reps = value
	case FieldType:
		t, ok := models.ParseSetType(value)
		if !ok {
			return false
		}
		s.Type = t
	default:
		return false
	}
	return true
}

// ToggleComplete flips the completed flag of the set at index.
func (a *Active) ToggleComplete(index int) bool {
	if !a.inRange(index) {
		return false
	}
	a.Sets[index].Completed = !a.Sets[index].Completed
	return true
}

// Snapshot returns a copy that shares no mutable state with a.
func (a *Active) Snapshot() *Active {
	if a == nil {
		return nil
	}
	c := *a
	c.Sets = make([]ActiveSet, len(a.Sets))
	copy(c.Sets, a.Sets)
	if a.RoutineID != nil {
		id := *a.RoutineID
		c.RoutineID = &id
	}
	return &c
}
