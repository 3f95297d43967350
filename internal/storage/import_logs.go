package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ImportLog represents a single import operation's outcome.
type ImportLog struct {
	ID               int64     `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	SessionsReceived int       `json:"sessions_received"`
	SessionsInserted int       `json:"sessions_inserted"`
	SetsInserted     int64     `json:"sets_inserted"`
	DurationMs       *int      `json:"duration_ms"`
	ErrorMessage     *string   `json:"error_message"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	createdAt := log.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var id int64
	err := db.SQL.QueryRowContext(ctx, db.rebind(
		`INSERT INTO import_logs (created_at, source, status, sessions_received, sessions_inserted,
		 sets_inserted, duration_ms, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		createdAt.Unix(), log.Source, log.Status, log.SessionsReceived, log.SessionsInserted,
		log.SetsInserted, log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog updates an existing import log entry (typically from "running" to "success" or "error").
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log ImportLog) error {
	_, err := db.SQL.ExecContext(ctx, db.rebind(
		`UPDATE import_logs SET
		 status = ?, sessions_received = ?, sessions_inserted = ?,
		 sets_inserted = ?, duration_ms = ?, error_message = ?
		 WHERE id = ?`),
		log.Status, log.SessionsReceived, log.SessionsInserted,
		log.SetsInserted, log.DurationMs, log.ErrorMessage, id,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs.
func (db *DB) QueryImportLogs(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.SQL.QueryContext(ctx, db.rebind(
		`SELECT id, created_at, source, status, sessions_received, sessions_inserted,
		 sets_inserted, duration_ms, error_message
		 FROM import_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []ImportLog
	for rows.Next() {
		var l ImportLog
		var createdAt int64
		var durationMs sql.NullInt64
		var errMsg sql.NullString
		if err := rows.Scan(&l.ID, &createdAt, &l.Source, &l.Status,
			&l.SessionsReceived, &l.SessionsInserted, &l.SetsInserted, &durationMs, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		l.CreatedAt = time.Unix(createdAt, 0).UTC()
		if durationMs.Valid {
			v := int(durationMs.Int64)
			l.DurationMs = &v
		}
		if errMsg.Valid {
			v := errMsg.String
			l.ErrorMessage = &v
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
