package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// ErrSeededExercise is returned when an edit or delete targets a bundled exercise.
var ErrSeededExercise = errors.New("seeded exercises cannot be modified")

const exerciseColumns = `id, name, muscle_group, type, instructions, images, is_custom`

// GetExercise retrieves a single exercise by ID.
func (db *DB) GetExercise(ctx context.Context, id int64) (*models.Exercise, error) {
	row := db.SQL.QueryRowContext(ctx, db.rebind(
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`), id)
	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %d: %w", id, err)
	}
	return ex, nil
}

// GetExerciseByName retrieves a single exercise by its unique name.
func (db *DB) GetExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	row := db.SQL.QueryRowContext(ctx, db.rebind(
		`SELECT `+exerciseColumns+` FROM exercises WHERE name = ?`), name)
	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise %q: %w", name, err)
	}
	return ex, nil
}

// ListExercises returns all exercises ordered by name, optionally filtered by muscle group.
func (db *DB) ListExercises(ctx context.Context, muscleGroup string) ([]models.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises`
	var args []any
	if muscleGroup != "" {
		query += ` WHERE muscle_group = ?`
		args = append(args, muscleGroup)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.SQL.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, *ex)
	}
	return result, rows.Err()
}

// CreateExercise inserts an exercise and returns its ID.
func (db *DB) CreateExercise(ctx context.Context, ex models.Exercise) (int64, error) {
	instructions, images, err := marshalExerciseLists(ex)
	if err != nil {
		return 0, err
	}
	var id int64
	err = db.SQL.QueryRowContext(ctx, db.rebind(
		`INSERT INTO exercises (name, muscle_group, type, instructions, images, is_custom)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		ex.Name, ex.MuscleGroup, ex.Type, instructions, images, ex.Custom,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting exercise %q: %w", ex.Name, err)
	}
	return id, nil
}

// UpdateCustomExercise overwrites a user-defined exercise. Seeded exercises are rejected.
func (db *DB) UpdateCustomExercise(ctx context.Context, ex models.Exercise) error {
	instructions, images, err := marshalExerciseLists(ex)
	if err != nil {
		return err
	}
	res, err := db.SQL.ExecContext(ctx, db.rebind(
		`UPDATE exercises
		 SET name = ?, muscle_group = ?, type = ?, instructions = ?, images = ?
		 WHERE id = ? AND is_custom = ?`),
		ex.Name, ex.MuscleGroup, ex.Type, instructions, images, ex.ID, true)
	if err != nil {
		return fmt.Errorf("updating exercise %d: %w", ex.ID, err)
	}
	return db.customWriteResult(ctx, ex.ID, res)
}

// DeleteCustomExercise removes a user-defined exercise. Set records keep the
// dangling exercise ID; seeded exercises are never deleted.
func (db *DB) DeleteCustomExercise(ctx context.Context, id int64) error {
	res, err := db.SQL.ExecContext(ctx, db.rebind(
		`DELETE FROM exercises WHERE id = ? AND is_custom = ?`), id, true)
	if err != nil {
		return fmt.Errorf("deleting exercise %d: %w", id, err)
	}
	return db.customWriteResult(ctx, id, res)
}

// customWriteResult tells "not custom" apart from "not found" when a guarded
// write touched no rows.
func (db *DB) customWriteResult(ctx context.Context, id int64, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := db.GetExercise(ctx, id); err != nil {
		return err
	}
	return ErrSeededExercise
}

func marshalExerciseLists(ex models.Exercise) (string, string, error) {
	instructions, err := json.Marshal(nonNil(ex.Instructions))
	if err != nil {
		return "", "", fmt.Errorf("encoding instructions: %w", err)
	}
	images, err := json.Marshal(nonNil(ex.Images))
	if err != nil {
		return "", "", fmt.Errorf("encoding images: %w", err)
	}
	return string(instructions), string(images), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

// scanExercise maps a row to an Exercise. Malformed list columns decode to
// empty lists instead of failing the whole read.
func scanExercise(row scanner) (*models.Exercise, error) {
	var ex models.Exercise
	var instructions, images string
	if err := row.Scan(&ex.ID, &ex.Name, &ex.MuscleGroup, &ex.Type, &instructions, &images, &ex.Custom); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(instructions), &ex.Instructions); err != nil {
		ex.Instructions = nil
	}
	if err := json.Unmarshal([]byte(images), &ex.Images); err != nil {
		ex.Images = nil
	}
	return &ex, nil
}
