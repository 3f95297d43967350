package alpha

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/storage/storagetest"
)

func newTestProvider(t *testing.T) (*Provider, *storage.DB) {
	t.Helper()
	db := storagetest.New(t)
	return NewProvider(db, slog.New(slog.NewTextHandler(io.Discard, nil))), db
}

func TestIngestStoresSessions(t *testing.T) {
	ctx := context.Background()
	p, db := newTestProvider(t)

	res, err := p.Ingest(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.SessionsReceived != 2 || res.SessionsInserted != 2 {
		t.Errorf("sessions received/inserted = %d/%d, want 2/2", res.SessionsReceived, res.SessionsInserted)
	}
	// 6 exercises in Legs + Bench Press
	if res.ExercisesCreated != 7 {
		t.Errorf("exercises created = %d, want 7", res.ExercisesCreated)
	}
	// Legs: 17 working + 5 warmups, Push: 3 working + 3 warmups
	if res.SetsInserted != 20 {
		t.Errorf("sets inserted = %d, want 20", res.SetsInserted)
	}
	if res.WarmupsSkipped != 8 {
		t.Errorf("warmups skipped = %d, want 8", res.WarmupsSkipped)
	}

	recent, err := db.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %d, want 2", len(recent))
	}
	legs := recent[0]
	if legs.Name != "Legs" || legs.DurationSeconds != 62*60 {
		t.Errorf("newest session = %q/%ds, want Legs/3720s", legs.Name, legs.DurationSeconds)
	}
	if legs.Notes != "Legs · Day 2 · Week 4 · Push-Pull-Legs" {
		t.Errorf("notes = %q", legs.Notes)
	}

	sets, err := db.FindSetsBySession(ctx, legs.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 17 {
		t.Fatalf("legs sets = %d, want 17", len(sets))
	}
	if sets[0].Weight != 115 || sets[0].Reps != 8 {
		t.Errorf("first set = %+v", sets[0])
	}
	if sets[0].Intensity == nil || *sets[0].Intensity != 1 {
		t.Errorf("first set intensity = %v, want 1", sets[0].Intensity)
	}

	ex, err := db.GetExerciseByName(ctx, "Sumo Squats")
	if err != nil {
		t.Fatal(err)
	}
	if !ex.Custom || ex.Type != "Smith machine" {
		t.Errorf("created exercise = %+v", ex)
	}
}

func TestIngestUsesCatalogExercise(t *testing.T) {
	ctx := context.Background()
	p, db := newTestProvider(t)
	if _, err := db.Seed(ctx, p.log); err != nil {
		t.Fatal(err)
	}
	bench, err := db.GetExerciseByName(ctx, "Bench Press")
	if err != nil {
		t.Fatal(err)
	}

	res, err := p.Ingest(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if res.ExercisesCreated != 6 {
		t.Errorf("exercises created = %d, want 6", res.ExercisesCreated)
	}

	history, err := db.FindSetsByExercise(ctx, bench.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Errorf("bench history = %d sets, want 3", len(history))
	}
}

func TestIngestSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	p, db := newTestProvider(t)

	if _, err := p.Ingest(ctx, strings.NewReader(sampleCSV)); err != nil {
		t.Fatal(err)
	}
	res, err := p.Ingest(ctx, strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if res.SessionsInserted != 0 || res.SessionsSkipped != 2 {
		t.Errorf("second import inserted/skipped = %d/%d, want 0/2", res.SessionsInserted, res.SessionsSkipped)
	}
	if res.ExercisesCreated != 0 {
		t.Errorf("second import created %d exercises", res.ExercisesCreated)
	}

	logs, err := db.QueryImportLogs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("import logs = %d, want 2", len(logs))
	}
	for _, l := range logs {
		if l.Status != "success" || l.Source != Source {
			t.Errorf("import log = %+v", l)
		}
		if l.DurationMs == nil {
			t.Error("import log missing duration")
		}
	}
}

func TestIngestParseErrorIsLogged(t *testing.T) {
	ctx := context.Background()
	p, db := newTestProvider(t)

	_, err := p.Ingest(ctx, strings.NewReader(`"1. Bench Press · Barbell · 6 reps"`+"\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}

	logs, err := db.QueryImportLogs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Status != "error" || logs[0].ErrorMessage == nil {
		t.Errorf("import logs = %+v", logs)
	}
}

func TestIngestNumbersWorkingSets(t *testing.T) {
	ctx := context.Background()
	p, db := newTestProvider(t)

	const backoff = `
"Push · Day 1 · Week 5 · Push-Pull-Legs";"2026-02-24 5:04 h";"1:05 hr"
"1. Bench Press · Barbell · 5 reps";"WU1 · 40 kg · 10 reps<br>WU2 · 70 kg · 5 reps"
#;KG;REPS;RIR
1;100;5;1
2;100;5;0
"2. Bench Press · Barbell · 12 reps";"WU1 · 60 kg · 6 reps"
#;KG;REPS;RIR
1;80;12;1
2;80;11;0
`
	res, err := p.Ingest(ctx, strings.NewReader(backoff))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.SetsInserted != 4 || res.WarmupsSkipped != 3 {
		t.Errorf("sets inserted/warmups = %d/%d, want 4/3", res.SetsInserted, res.WarmupsSkipped)
	}

	bench, err := db.GetExerciseByName(ctx, "Bench Press")
	if err != nil {
		t.Fatal(err)
	}
	history, err := db.FindSetsByExercise(ctx, bench.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 4 {
		t.Fatalf("bench sets = %d, want 4", len(history))
	}
	for i, s := range history {
		if s.SetNumber != i+1 {
			t.Errorf("set %d number = %d, want %d", i, s.SetNumber, i+1)
		}
	}
	if history[2].Weight != 80 || history[2].Reps != 12 {
		t.Errorf("first backoff set = %vx%d, want 80x12", history[2].Weight, history[2].Reps)
	}
}
