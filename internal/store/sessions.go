package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/lunafocus/internal/focus"
)

// RecordSession appends a completed timer session to the log.
func (s *Store) RecordSession(ctx context.Context, sess focus.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (mode, preset_id, duration, day, completed_at) VALUES (?, ?, ?, ?, ?)`,
		sess.Mode, sess.PresetID, sess.Seconds, sess.Day, sess.CompletedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// ListSessions returns sessions whose day key falls in [from, to], newest first.
func (s *Store) ListSessions(ctx context.Context, from, to string) ([]focus.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mode, preset_id, duration, day, completed_at
		 FROM sessions WHERE day >= ? AND day <= ?
		 ORDER BY completed_at DESC, id DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []focus.Session
	for rows.Next() {
		var sess focus.Session
		var completedAt string
		if err := rows.Scan(&sess.Mode, &sess.PresetID, &sess.Seconds, &sess.Day, &completedAt); err != nil {
			return nil, err
		}
		sess.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CountSessions returns the number of completed sessions of mode per day key
// in [from, to].
func (s *Store) CountSessions(ctx context.Context, mode, from, to string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, COUNT(*)
		FROM sessions
		WHERE mode = ? AND day >= ? AND day <= ?
		GROUP BY day
		ORDER BY day`,
		mode, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	return counts, rows.Err()
}
