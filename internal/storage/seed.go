package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var seedCatalog []byte

// SeedCatalog is the bundled exercise catalog plus predefined programs.
type SeedCatalog struct {
	Exercises []SeedExercise `yaml:"exercises"`
	Programs  []SeedProgram  `yaml:"programs"`
}

type SeedExercise struct {
	Name         string   `yaml:"name"`
	MuscleGroup  string   `yaml:"muscle_group"`
	Type         string   `yaml:"type"`
	Instructions []string `yaml:"instructions"`
	Images       []string `yaml:"images"`
}

// SeedProgram groups routines that share a program tag.
type SeedProgram struct {
	Name     string        `yaml:"name"`
	Routines []SeedRoutine `yaml:"routines"`
}

type SeedRoutine struct {
	Name      string       `yaml:"name"`
	Exercises []SeedTarget `yaml:"exercises"`
}

type SeedTarget struct {
	Exercise string `yaml:"exercise"`
	Sets     int    `yaml:"sets"`
	Reps     int    `yaml:"reps"`
}

// SeedResult reports what a seeding run inserted.
type SeedResult struct {
	ExercisesInserted int `json:"exercises_inserted"`
	RoutinesInserted  int `json:"routines_inserted"`
}

// LoadSeedCatalog parses a catalog document.
func LoadSeedCatalog(data []byte) (*SeedCatalog, error) {
	var c SeedCatalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing seed catalog: %w", err)
	}
	return &c, nil
}

// Seed inserts the bundled catalog. It is idempotent: existing exercises are
// left untouched and a program routine is only created if no routine with the
// same name and program tag exists.
func (db *DB) Seed(ctx context.Context, log *slog.Logger) (*SeedResult, error) {
	c, err := LoadSeedCatalog(seedCatalog)
	if err != nil {
		return nil, err
	}
	return db.SeedFrom(ctx, c, log)
}

// SeedFrom inserts the given catalog.
func (db *DB) SeedFrom(ctx context.Context, c *SeedCatalog, log *slog.Logger) (*SeedResult, error) {
	result := &SeedResult{}

	for _, ex := range c.Exercises {
		instructions, images, err := marshalExerciseLists(models.Exercise{
			Instructions: ex.Instructions,
			Images:       ex.Images,
		})
		if err != nil {
			return nil, err
		}
		res, err := db.SQL.ExecContext(ctx, db.rebind(
			`INSERT INTO exercises (name, muscle_group, type, instructions, images, is_custom)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (name) DO NOTHING`),
			ex.Name, ex.MuscleGroup, ex.Type, instructions, images, false)
		if err != nil {
			return nil, fmt.Errorf("seeding exercise %q: %w", ex.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			result.ExercisesInserted++
		}
	}

	for _, p := range c.Programs {
		for _, sr := range p.Routines {
			_, err := db.FindRoutineByName(ctx, sr.Name, p.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}

			routine := models.Routine{Name: sr.Name, Program: p.Name}
			for _, t := range sr.Exercises {
				ex, err := db.GetExerciseByName(ctx, t.Exercise)
				if errors.Is(err, ErrNotFound) {
					log.Warn("seed routine references unknown exercise", "routine", sr.Name, "exercise", t.Exercise)
					continue
				}
				if err != nil {
					return nil, err
				}
				routine.Exercises = append(routine.Exercises, models.RoutineExercise{
					ExerciseID: ex.ID,
					TargetSets: t.Sets,
					TargetReps: t.Reps,
				})
			}
			if _, err := db.CreateRoutine(ctx, routine); err != nil {
				return nil, err
			}
			result.RoutinesInserted++
		}
	}

	log.Info("catalog seeded", "exercises", result.ExercisesInserted, "routines", result.RoutinesInserted)
	return result, nil
}
