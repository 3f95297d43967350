package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
)

// SessionWriter is the write half of a finalize transaction.
type SessionWriter interface {
	CreateSession(ctx context.Context, s models.CompletedSession) (int64, error)
	CreateSetRecord(ctx context.Context, r models.SetRecord) (int64, error)
}

// txSessionWriter writes through an open transaction.
type txSessionWriter struct {
	tx     *sql.Tx
	driver string
}

func (w *txSessionWriter) CreateSession(ctx context.Context, s models.CompletedSession) (int64, error) {
	status := s.Status
	if status == "" {
		status = models.SessionStatusCompleted
	}
	var id int64
	err := w.tx.QueryRowContext(ctx, rebind(w.driver,
		`INSERT INTO completed_sessions (routine_id, name, started_at, duration_seconds, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		nullInt64(s.RoutineID), s.Name, s.Date.Unix(), s.DurationSeconds, s.Notes, status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	return id, nil
}

func (w *txSessionWriter) CreateSetRecord(ctx context.Context, r models.SetRecord) (int64, error) {
	var intensity sql.NullFloat64
	if r.Intensity != nil {
		intensity = sql.NullFloat64{Float64: *r.Intensity, Valid: true}
	}
	var id int64
	err := w.tx.QueryRowContext(ctx, rebind(w.driver,
		`INSERT INTO set_records (session_id, exercise_id, set_number, weight, reps, intensity)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		r.SessionID, r.ExerciseID, r.SetNumber, r.Weight, r.Reps, intensity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting set record: %w", err)
	}
	return id, nil
}

// WithSessionTx runs fn with a SessionWriter bound to a single transaction.
// Either every row fn writes is committed or none is.
func (db *DB) WithSessionTx(ctx context.Context, fn func(w SessionWriter) error) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&txSessionWriter{tx: tx, driver: db.driver})
	})
}

const sessionColumns = `id, routine_id, name, started_at, duration_seconds, notes, status`

// GetSession retrieves a completed session with its set records.
func (db *DB) GetSession(ctx context.Context, id int64) (*models.CompletedSession, error) {
	row := db.SQL.QueryRowContext(ctx, db.rebind(
		`SELECT `+sessionColumns+` FROM completed_sessions WHERE id = ?`), id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session %d: %w", id, err)
	}

	s.Sets, err = db.FindSetsBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateSessionNotes replaces the notes of a completed session, the only
// field that may change after the session is written.
func (db *DB) UpdateSessionNotes(ctx context.Context, id int64, notes string) error {
	res, err := db.SQL.ExecContext(ctx, db.rebind(
		`UPDATE completed_sessions SET notes = ? WHERE id = ?`), notes, id)
	if err != nil {
		return fmt.Errorf("updating session notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SessionExists reports whether a session with the given name started at
// exactly date, to the second.
func (db *DB) SessionExists(ctx context.Context, name string, date time.Time) (bool, error) {
	var n int
	err := db.SQL.QueryRowContext(ctx, db.rebind(
		`SELECT COUNT(*) FROM completed_sessions WHERE name = ? AND started_at = ?`),
		name, date.Unix(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking for existing session: %w", err)
	}
	return n > 0, nil
}

// FindSessionsByName returns the most recent sessions with the given name, newest first.
func (db *DB) FindSessionsByName(ctx context.Context, name string, limit int) ([]models.CompletedSession, error) {
	return db.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM completed_sessions
		 WHERE name = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, name, limit)
}

// FindSessionsByRoutine returns the most recent sessions started from a routine, newest first.
func (db *DB) FindSessionsByRoutine(ctx context.Context, routineID int64, limit int) ([]models.CompletedSession, error) {
	return db.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM completed_sessions
		 WHERE routine_id = ?
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, routineID, limit)
}

// RecentSessions returns the newest sessions. Ties on date are broken by
// insertion order, newest first.
func (db *DB) RecentSessions(ctx context.Context, limit int) ([]models.CompletedSession, error) {
	return db.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM completed_sessions
		 ORDER BY started_at DESC, id DESC
		 LIMIT ?`, limit)
}

// FindSetsBySession returns the set records of a session in insertion order.
func (db *DB) FindSetsBySession(ctx context.Context, sessionID int64) ([]models.SetRecord, error) {
	rows, err := db.SQL.QueryContext(ctx, db.rebind(
		`SELECT id, session_id, exercise_id, set_number, weight, reps, intensity
		 FROM set_records
		 WHERE session_id = ?
		 ORDER BY id ASC`), sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	var result []models.SetRecord
	for rows.Next() {
		r, err := scanSetRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// FindSetsByExercise returns every set ever logged for an exercise, oldest
// session first, each annotated with its session's date.
func (db *DB) FindSetsByExercise(ctx context.Context, exerciseID int64) ([]models.ExerciseSet, error) {
	rows, err := db.SQL.QueryContext(ctx, db.rebind(
		`SELECT sr.id, sr.session_id, sr.exercise_id, sr.set_number, sr.weight, sr.reps, sr.intensity,
		        cs.started_at
		 FROM set_records sr
		 JOIN completed_sessions cs ON cs.id = sr.session_id
		 WHERE sr.exercise_id = ?
		 ORDER BY cs.started_at ASC, cs.id ASC, sr.id ASC`), exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise sets: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseSet
	for rows.Next() {
		var es models.ExerciseSet
		var intensity sql.NullFloat64
		var startedAt int64
		if err := rows.Scan(&es.ID, &es.SessionID, &es.ExerciseID, &es.SetNumber,
			&es.Weight, &es.Reps, &intensity, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise set: %w", err)
		}
		if intensity.Valid {
			v := intensity.Float64
			es.Intensity = &v
		}
		es.SessionDate = time.Unix(startedAt, 0).UTC()
		result = append(result, es)
	}
	return result, rows.Err()
}

func (db *DB) querySessions(ctx context.Context, query string, args ...any) ([]models.CompletedSession, error) {
	rows, err := db.SQL.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.CompletedSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func scanSession(row scanner) (*models.CompletedSession, error) {
	var s models.CompletedSession
	var routineID sql.NullInt64
	var startedAt int64
	if err := row.Scan(&s.ID, &routineID, &s.Name, &startedAt, &s.DurationSeconds, &s.Notes, &s.Status); err != nil {
		return nil, err
	}
	if routineID.Valid {
		v := routineID.Int64
		s.RoutineID = &v
	}
	s.Date = time.Unix(startedAt, 0).UTC()
	return &s, nil
}

func scanSetRecord(row scanner) (models.SetRecord, error) {
	var r models.SetRecord
	var intensity sql.NullFloat64
	if err := row.Scan(&r.ID, &r.SessionID, &r.ExerciseID, &r.SetNumber, &r.Weight, &r.Reps, &intensity); err != nil {
		return r, fmt.Errorf("scanning set record: %w", err)
	}
	if intensity.Valid {
		v := intensity.Float64
		r.Intensity = &v
	}
	return r, nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
