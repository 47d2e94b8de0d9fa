package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type HabitLogRepo struct {
	db *sql.DB
}

func NewHabitLogRepo(db *sql.DB) *HabitLogRepo {
	return &HabitLogRepo{db: db}
}

func (r *HabitLogRepo) Append(ctx context.Context, l *HabitLog) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO habit_logs (user_id, habit_id, xp_gained, dmg_dealt, logged_at)
		VALUES (?, ?, ?, ?, ?)
	`, l.UserID, l.HabitID, l.XPGained, l.DmgDealt, l.LoggedAt.Unix())
	if err != nil {
		return fmt.Errorf("habit log append: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		l.ID = id
	}
	return nil
}

// CountByUser returns how many completions userID has logged.
func (r *HabitLogRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habit_logs WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("habit log count: %w", err)
	}
	return n, nil
}

// Between returns the completions userID logged in [from, to), oldest first.
func (r *HabitLogRepo) Between(ctx context.Context, userID string, from, to time.Time) ([]HabitLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, habit_id, xp_gained, dmg_dealt, logged_at
		FROM habit_logs
		WHERE user_id = ? AND logged_at >= ? AND logged_at < ?
		ORDER BY logged_at, id
	`, userID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("habit log between: %w", err)
	}
	defer rows.Close()

	var out []HabitLog
	for rows.Next() {
		var l HabitLog
		var logged int64
		if err := rows.Scan(&l.ID, &l.UserID, &l.HabitID, &l.XPGained, &l.DmgDealt, &logged); err != nil {
			return nil, fmt.Errorf("habit log scan: %w", err)
		}
		l.LoggedAt = time.Unix(logged, 0).UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}
