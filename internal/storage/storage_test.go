package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/storagetest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func mustCreateExercise(t *testing.T, db *storage.DB, ex models.Exercise) int64 {
	t.Helper()
	id, err := db.CreateExercise(context.Background(), ex)
	if err != nil {
		t.Fatalf("CreateExercise(%q): %v", ex.Name, err)
	}
	return id
}

func mustWriteSession(t *testing.T, db *storage.DB, s models.CompletedSession, sets ...models.SetRecord) int64 {
	t.Helper()
	ctx := context.Background()
	var id int64
	err := db.WithSessionTx(ctx, func(w storage.SessionWriter) error {
		var err error
		id, err = w.CreateSession(ctx, s)
		if err != nil {
			return err
		}
		for _, r := range sets {
			r.SessionID = id
			if _, err := w.CreateSetRecord(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("writing session %q: %v", s.Name, err)
	}
	return id
}

// TestExerciseRoundTrip verifies that list columns survive the JSON mapping
// at the storage boundary.
func TestExerciseRoundTrip(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	id := mustCreateExercise(t, db, models.Exercise{
		Name:         "Zercher Squat",
		MuscleGroup:  "Legs",
		Type:         "Barbell",
		Instructions: []string{"Bar in the elbow crease.", "Squat."},
		Images:       []string{"zercher-1.jpg"},
		Custom:       true,
	})

	got, err := db.GetExercise(ctx, id)
	if err != nil {
		t.Fatalf("GetExercise: %v", err)
	}
	if got.Name != "Zercher Squat" || got.MuscleGroup != "Legs" || !got.Custom {
		t.Errorf("exercise = %+v", got)
	}
	if len(got.Instructions) != 2 || got.Instructions[1] != "Squat." {
		t.Errorf("instructions = %v", got.Instructions)
	}
	if got.Image() != "zercher-1.jpg" {
		t.Errorf("image = %q, want zercher-1.jpg", got.Image())
	}

	if _, err := db.GetExercise(ctx, id+100); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetExercise(missing) error = %v, want ErrNotFound", err)
	}
}

// TestSeededExerciseIsProtected verifies that bundled exercises can be neither
// edited nor deleted, while custom ones can.
func TestSeededExerciseIsProtected(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	seeded := mustCreateExercise(t, db, models.Exercise{Name: "Bench Press", MuscleGroup: "Chest"})
	custom := mustCreateExercise(t, db, models.Exercise{Name: "Band Pull-Apart", Custom: true})

	if err := db.DeleteCustomExercise(ctx, seeded); !errors.Is(err, storage.ErrSeededExercise) {
		t.Errorf("delete seeded error = %v, want ErrSeededExercise", err)
	}
	if err := db.UpdateCustomExercise(ctx, models.Exercise{ID: seeded, Name: "Renamed"}); !errors.Is(err, storage.ErrSeededExercise) {
		t.Errorf("update seeded error = %v, want ErrSeededExercise", err)
	}
	if err := db.UpdateCustomExercise(ctx, models.Exercise{ID: custom, Name: "Band Pull Apart", MuscleGroup: "Shoulders"}); err != nil {
		t.Fatalf("update custom: %v", err)
	}
	if err := db.DeleteCustomExercise(ctx, custom); err != nil {
		t.Fatalf("delete custom: %v", err)
	}
	if err := db.DeleteCustomExercise(ctx, custom); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

// TestDeleteRoutineKeepsHistory verifies that deleting a routine nulls the
// link on past sessions instead of removing them.
func TestDeleteRoutineKeepsHistory(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	bench := mustCreateExercise(t, db, models.Exercise{Name: "Bench Press"})
	routineID, err := db.CreateRoutine(ctx, models.Routine{
		Name:      "Push",
		Exercises: []models.RoutineExercise{{ExerciseID: bench, TargetSets: 3, TargetReps: 8}},
	})
	if err != nil {
		t.Fatalf("CreateRoutine: %v", err)
	}

	sessionID := mustWriteSession(t, db, models.CompletedSession{
		RoutineID: &routineID,
		Name:      "Push",
		Date:      time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}, models.SetRecord{ExerciseID: bench, SetNumber: 1, Weight: 80, Reps: 8})

	if err := db.DeleteRoutine(ctx, routineID); err != nil {
		t.Fatalf("DeleteRoutine: %v", err)
	}
	if _, err := db.GetRoutine(ctx, routineID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetRoutine after delete error = %v, want ErrNotFound", err)
	}

	s, err := db.GetSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s.RoutineID != nil {
		t.Errorf("routine_id = %d, want nil", *s.RoutineID)
	}
	if len(s.Sets) != 1 {
		t.Errorf("sets = %d, want 1", len(s.Sets))
	}
}

// TestUpdateRoutineReplacesExercises verifies that exercises are rewritten in
// the given order.
func TestUpdateRoutineReplacesExercises(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	a := mustCreateExercise(t, db, models.Exercise{Name: "Back Squat"})
	b := mustCreateExercise(t, db, models.Exercise{Name: "Leg Press"})
	id, err := db.CreateRoutine(ctx, models.Routine{
		Name:      "Legs",
		Exercises: []models.RoutineExercise{{ExerciseID: a, TargetSets: 3, TargetReps: 5}},
	})
	if err != nil {
		t.Fatalf("CreateRoutine: %v", err)
	}

	err = db.UpdateRoutine(ctx, models.Routine{
		ID:   id,
		Name: "Legs Heavy",
		Exercises: []models.RoutineExercise{
			{ExerciseID: b, TargetSets: 4, TargetReps: 10},
			{ExerciseID: a, TargetSets: 5, TargetReps: 3},
		},
	})
	if err != nil {
		t.Fatalf("UpdateRoutine: %v", err)
	}

	r, err := db.GetRoutine(ctx, id)
	if err != nil {
		t.Fatalf("GetRoutine: %v", err)
	}
	if r.Name != "Legs Heavy" {
		t.Errorf("name = %q, want Legs Heavy", r.Name)
	}
	if len(r.Exercises) != 2 || r.Exercises[0].ExerciseID != b || r.Exercises[1].ExerciseID != a {
		t.Fatalf("exercises = %+v", r.Exercises)
	}
	if r.Exercises[1].TargetSets != 5 || r.Exercises[1].TargetReps != 3 {
		t.Errorf("second target = %+v", r.Exercises[1])
	}

	if err := db.UpdateRoutine(ctx, models.Routine{ID: id + 50, Name: "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}
}

// TestSessionTxRollback verifies that an error returned from the callback
// leaves no header and no set rows behind.
func TestSessionTxRollback(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithSessionTx(ctx, func(w storage.SessionWriter) error {
		id, err := w.CreateSession(ctx, models.CompletedSession{Name: "Push", Date: time.Now()})
		if err != nil {
			return err
		}
		if _, err := w.CreateSetRecord(ctx, models.SetRecord{SessionID: id, ExerciseID: 1, SetNumber: 1, Weight: 50, Reps: 5}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithSessionTx error = %v, want boom", err)
	}

	sessions, err := db.FindSessionsByName(ctx, "Push", 10)
	if err != nil {
		t.Fatalf("FindSessionsByName: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0 after rollback", len(sessions))
	}
	sets, err := db.FindSetsByExercise(ctx, 1)
	if err != nil {
		t.Fatalf("FindSetsByExercise: %v", err)
	}
	if len(sets) != 0 {
		t.Errorf("sets = %d, want 0 after rollback", len(sets))
	}
}

// TestSessionOrdering verifies newest-first ordering with ties on date broken
// by insertion order, and oldest-first ordering for exercise history.
func TestSessionOrdering(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	day1 := time.Date(2026, 1, 10, 17, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 2)

	first := mustWriteSession(t, db, models.CompletedSession{Name: "Push", Date: day1},
		models.SetRecord{ExerciseID: 7, SetNumber: 1, Weight: 60, Reps: 8})
	tieA := mustWriteSession(t, db, models.CompletedSession{Name: "Push", Date: day2},
		models.SetRecord{ExerciseID: 7, SetNumber: 1, Weight: 62.5, Reps: 8})
	tieB := mustWriteSession(t, db, models.CompletedSession{Name: "Pull", Date: day2})

	recent, err := db.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSessions: %v", err)
	}
	wantOrder := []int64{tieB, tieA, first}
	if len(recent) != len(wantOrder) {
		t.Fatalf("recent = %d sessions, want %d", len(recent), len(wantOrder))
	}
	for i, id := range wantOrder {
		if recent[i].ID != id {
			t.Errorf("recent[%d].ID = %d, want %d", i, recent[i].ID, id)
		}
	}
	if !recent[2].Date.Equal(day1) {
		t.Errorf("date = %v, want %v", recent[2].Date, day1)
	}

	byName, err := db.FindSessionsByName(ctx, "Push", 1)
	if err != nil {
		t.Fatalf("FindSessionsByName: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != tieA {
		t.Errorf("latest Push = %+v, want id %d", byName, tieA)
	}

	hist, err := db.FindSetsByExercise(ctx, 7)
	if err != nil {
		t.Fatalf("FindSetsByExercise: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history = %d sets, want 2", len(hist))
	}
	if hist[0].SessionID != first || hist[1].SessionID != tieA {
		t.Errorf("history sessions = [%d %d], want [%d %d]", hist[0].SessionID, hist[1].SessionID, first, tieA)
	}
	if hist[1].Weight != 62.5 || !hist[1].SessionDate.Equal(day2) {
		t.Errorf("history[1] = %+v", hist[1])
	}
}

// TestUpdateSessionNotes verifies notes are the one mutable field of a written session.
func TestUpdateSessionNotes(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	id := mustWriteSession(t, db, models.CompletedSession{Name: "Legs", Date: time.Now(), Notes: "ok"})
	if err := db.UpdateSessionNotes(ctx, id, "knee felt fine"); err != nil {
		t.Fatalf("UpdateSessionNotes: %v", err)
	}
	s, err := db.GetSession(ctx, id)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s.Notes != "knee felt fine" {
		t.Errorf("notes = %q", s.Notes)
	}
	if s.Status != models.SessionStatusCompleted {
		t.Errorf("status = %q, want %q", s.Status, models.SessionStatusCompleted)
	}
	if err := db.UpdateSessionNotes(ctx, id+1, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing session error = %v, want ErrNotFound", err)
	}
}

// TestSeedIdempotent verifies the bundled catalog can be applied twice
// without duplicating exercises or program routines.
func TestSeedIdempotent(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	first, err := db.Seed(ctx, discard)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if first.ExercisesInserted == 0 || first.RoutinesInserted == 0 {
		t.Fatalf("first seed = %+v, want inserts", first)
	}

	second, err := db.Seed(ctx, discard)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if second.ExercisesInserted != 0 || second.RoutinesInserted != 0 {
		t.Errorf("second seed = %+v, want no inserts", second)
	}

	push, err := db.FindRoutineByName(ctx, "Push", "Push-Pull-Legs")
	if err != nil {
		t.Fatalf("FindRoutineByName: %v", err)
	}
	if len(push.Exercises) != 5 {
		t.Errorf("Push exercises = %d, want 5", len(push.Exercises))
	}
	bench, err := db.GetExerciseByName(ctx, "Bench Press")
	if err != nil {
		t.Fatalf("GetExerciseByName: %v", err)
	}
	if bench.Custom {
		t.Error("seeded exercise marked custom")
	}
	if push.Exercises[0].ExerciseID != bench.ID || push.Exercises[0].TargetSets != 4 {
		t.Errorf("first Push target = %+v", push.Exercises[0])
	}
}

// TestImportLogLifecycle verifies a log moves from running to success and
// is listed newest first.
func TestImportLogLifecycle(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	older, err := db.InsertImportLog(ctx, storage.ImportLog{
		CreatedAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Source:    "alpha",
		Status:    "success",
	})
	if err != nil {
		t.Fatalf("InsertImportLog: %v", err)
	}
	id, err := db.InsertImportLog(ctx, storage.ImportLog{Source: "alpha", Status: "running"})
	if err != nil {
		t.Fatalf("InsertImportLog: %v", err)
	}

	ms := 42
	err = db.UpdateImportLog(ctx, id, storage.ImportLog{
		Status:           "success",
		SessionsReceived: 3,
		SessionsInserted: 2,
		SetsInserted:     17,
		DurationMs:       &ms,
	})
	if err != nil {
		t.Fatalf("UpdateImportLog: %v", err)
	}

	logs, err := db.QueryImportLogs(ctx, 10)
	if err != nil {
		t.Fatalf("QueryImportLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("logs = %d, want 2", len(logs))
	}
	if logs[0].ID != id || logs[1].ID != older {
		t.Errorf("order = [%d %d], want [%d %d]", logs[0].ID, logs[1].ID, id, older)
	}
	if logs[0].Status != "success" || logs[0].SetsInserted != 17 || logs[0].SessionsInserted != 2 {
		t.Errorf("updated log = %+v", logs[0])
	}
	if logs[0].DurationMs == nil || *logs[0].DurationMs != 42 {
		t.Errorf("duration = %v, want 42", logs[0].DurationMs)
	}
	if logs[0].ErrorMessage != nil {
		t.Errorf("error message = %q, want nil", *logs[0].ErrorMessage)
	}
}

// TestDataStats verifies aggregate counts and per-name volume.
func TestDataStats(t *testing.T) {
	db := storagetest.New(t)
	ctx := context.Background()

	empty, err := db.GetDataStats(ctx)
	if err != nil {
		t.Fatalf("GetDataStats(empty): %v", err)
	}
	if empty.TotalSessions != 0 || empty.EarliestSession != nil {
		t.Errorf("empty stats = %+v", empty)
	}

	bench := mustCreateExercise(t, db, models.Exercise{Name: "Bench Press"})
	mustCreateExercise(t, db, models.Exercise{Name: "Band Pull-Apart", Custom: true})

	day := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)
	mustWriteSession(t, db, models.CompletedSession{Name: "Push", Date: day, DurationSeconds: 1800},
		models.SetRecord{ExerciseID: bench, SetNumber: 1, Weight: 100, Reps: 5},
		models.SetRecord{ExerciseID: bench, SetNumber: 2, Weight: 100, Reps: 5})
	mustWriteSession(t, db, models.CompletedSession{Name: "Push", Date: day.AddDate(0, 0, 3), DurationSeconds: 1200},
		models.SetRecord{ExerciseID: bench, SetNumber: 1, Weight: 50, Reps: 10})

	stats, err := db.GetDataStats(ctx)
	if err != nil {
		t.Fatalf("GetDataStats: %v", err)
	}
	if stats.TotalExercises != 2 || stats.CustomExercises != 1 {
		t.Errorf("exercises = %d/%d custom, want 2/1", stats.TotalExercises, stats.CustomExercises)
	}
	if stats.TotalSessions != 2 || stats.TotalSets != 3 {
		t.Errorf("sessions/sets = %d/%d, want 2/3", stats.TotalSessions, stats.TotalSets)
	}
	if stats.TotalVolume != 1500 {
		t.Errorf("volume = %v, want 1500", stats.TotalVolume)
	}
	if stats.EarliestSession == nil || !stats.EarliestSession.Equal(day) {
		t.Errorf("earliest = %v, want %v", stats.EarliestSession, day)
	}
	if len(stats.SessionsByName) != 1 {
		t.Fatalf("by name = %+v", stats.SessionsByName)
	}
	push := stats.SessionsByName[0]
	if push.Count != 2 || push.TotalDuration != 3000 || push.TotalVolume != 1500 {
		t.Errorf("push stat = %+v", push)
	}
}
