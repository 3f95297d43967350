package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
)

// GetRoutine retrieves a routine with its exercises in position order.
func (db *DB) GetRoutine(ctx context.Context, id int64) (*models.Routine, error) {
	var r models.Routine
	err := db.SQL.QueryRowContext(ctx, db.rebind(
		`SELECT id, name, program FROM routines WHERE id = ?`), id,
	).Scan(&r.ID, &r.Name, &r.Program)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine %d: %w", id, err)
	}

	rows, err := db.SQL.QueryContext(ctx, db.rebind(
		`SELECT exercise_id, position, target_sets, target_reps
		 FROM routine_exercises
		 WHERE routine_id = ?
		 ORDER BY position ASC, id ASC`), id)
	if err != nil {
		return nil, fmt.Errorf("querying routine exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var re models.RoutineExercise
		if err := rows.Scan(&re.ExerciseID, &re.Position, &re.TargetSets, &re.TargetReps); err != nil {
			return nil, fmt.Errorf("scanning routine exercise: %w", err)
		}
		r.Exercises = append(r.Exercises, re)
	}
	return &r, rows.Err()
}

// ListRoutines returns all routines (without exercises) ordered by program then name.
func (db *DB) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	rows, err := db.SQL.QueryContext(ctx,
		`SELECT id, name, program FROM routines ORDER BY program ASC, name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying routines: %w", err)
	}
	defer rows.Close()

	var result []models.Routine
	for rows.Next() {
		var r models.Routine
		if err := rows.Scan(&r.ID, &r.Name, &r.Program); err != nil {
			return nil, fmt.Errorf("scanning routine: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CreateRoutine inserts a routine and its exercises in one transaction.
func (db *DB) CreateRoutine(ctx context.Context, r models.Routine) (int64, error) {
	var id int64
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, db.rebind(
			`INSERT INTO routines (name, program) VALUES (?, ?) RETURNING id`),
			r.Name, r.Program,
		).Scan(&id); err != nil {
			return fmt.Errorf("inserting routine %q: %w", r.Name, err)
		}
		return db.insertRoutineExercises(ctx, tx, id, r.Exercises)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRoutine renames a routine and replaces its exercise list.
func (db *DB) UpdateRoutine(ctx context.Context, r models.Routine) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, db.rebind(
			`UPDATE routines SET name = ?, program = ? WHERE id = ?`), r.Name, r.Program, r.ID)
		if err != nil {
			return fmt.Errorf("updating routine %d: %w", r.ID, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("reading affected rows: %w", err)
		} else if n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, db.rebind(
			`DELETE FROM routine_exercises WHERE routine_id = ?`), r.ID); err != nil {
			return fmt.Errorf("clearing routine exercises: %w", err)
		}
		return db.insertRoutineExercises(ctx, tx, r.ID, r.Exercises)
	})
}

// DeleteRoutine removes a routine. Completed sessions that came from it keep
// their history; only their routine link is nulled.
func (db *DB) DeleteRoutine(ctx context.Context, id int64) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, db.rebind(
			`UPDATE completed_sessions SET routine_id = NULL WHERE routine_id = ?`), id); err != nil {
			return fmt.Errorf("unlinking sessions from routine %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, db.rebind(
			`DELETE FROM routine_exercises WHERE routine_id = ?`), id); err != nil {
			return fmt.Errorf("deleting routine exercises: %w", err)
		}
		res, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM routines WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("deleting routine %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("reading affected rows: %w", err)
		} else if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// FindRoutineByName returns the first routine with the given name and program tag.
func (db *DB) FindRoutineByName(ctx context.Context, name, program string) (*models.Routine, error) {
	var id int64
	err := db.SQL.QueryRowContext(ctx, db.rebind(
		`SELECT id FROM routines WHERE name = ? AND program = ? ORDER BY id ASC LIMIT 1`),
		name, program,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine %q: %w", name, err)
	}
	return db.GetRoutine(ctx, id)
}

func (db *DB) insertRoutineExercises(ctx context.Context, tx *sql.Tx, routineID int64, exercises []models.RoutineExercise) error {
	for i, re := range exercises {
		if _, err := tx.ExecContext(ctx, db.rebind(
			`INSERT INTO routine_exercises (routine_id, exercise_id, position, target_sets, target_reps)
			 VALUES (?, ?, ?, ?, ?)`),
			routineID, re.ExerciseID, i, re.TargetSets, re.TargetReps); err != nil {
			return fmt.Errorf("inserting routine exercise %d: %w", re.ExerciseID, err)
		}
	}
	return nil
}
