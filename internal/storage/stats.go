package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored training data.
type DataStats struct {
	TotalExercises  int64             `json:"total_exercises"`
	CustomExercises int64             `json:"custom_exercises"`
	TotalRoutines   int64             `json:"total_routines"`
	TotalSessions   int64             `json:"total_sessions"`
	TotalSets       int64             `json:"total_sets"`
	TotalVolume     float64           `json:"total_volume"`
	EarliestSession *time.Time        `json:"earliest_session"`
	LatestSession   *time.Time        `json:"latest_session"`
	SessionsByName  []SessionNameStat `json:"sessions_by_name"`
}

// SessionNameStat holds summary stats for all sessions sharing a name.
type SessionNameStat struct {
	Name          string  `json:"name"`
	Count         int64   `json:"count"`
	TotalDuration int64   `json:"total_duration_sec"`
	TotalVolume   float64 `json:"total_volume"`
}

// GetDataStats returns aggregate statistics for the stored training log.
func (db *DB) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{}

	err := db.SQL.QueryRowContext(ctx, db.rebind(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_custom = ? THEN 1 ELSE 0 END), 0) FROM exercises`), true,
	).Scan(&stats.TotalExercises, &stats.CustomExercises)
	if err != nil {
		return nil, fmt.Errorf("counting exercises: %w", err)
	}

	err = db.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM routines`).Scan(&stats.TotalRoutines)
	if err != nil {
		return nil, fmt.Errorf("counting routines: %w", err)
	}

	var earliest, latest sql.NullInt64
	err = db.SQL.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(started_at), MAX(started_at) FROM completed_sessions`,
	).Scan(&stats.TotalSessions, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	if earliest.Valid {
		t := time.Unix(earliest.Int64, 0).UTC()
		stats.EarliestSession = &t
	}
	if latest.Valid {
		t := time.Unix(latest.Int64, 0).UTC()
		stats.LatestSession = &t
	}

	err = db.SQL.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(weight * reps), 0) FROM set_records`,
	).Scan(&stats.TotalSets, &stats.TotalVolume)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	rows, err := db.SQL.QueryContext(ctx,
		`SELECT cs.name, COUNT(*), CAST(COALESCE(SUM(cs.duration_seconds), 0) AS BIGINT), COALESCE(SUM(v.volume), 0)
		 FROM completed_sessions cs
		 LEFT JOIN (
			SELECT session_id, SUM(weight * reps) AS volume FROM set_records GROUP BY session_id
		 ) v ON v.session_id = cs.id
		 GROUP BY cs.name
		 ORDER BY COUNT(*) DESC, cs.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions by name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s SessionNameStat
		if err := rows.Scan(&s.Name, &s.Count, &s.TotalDuration, &s.TotalVolume); err != nil {
			return nil, fmt.Errorf("scanning session stat: %w", err)
		}
		stats.SessionsByName = append(stats.SessionsByName, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
