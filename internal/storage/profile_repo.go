package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns the profile for userID, or nil when none was saved yet.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, username, level, xp, max_xp, streak, star_coins, gems, streak_shields, language,
			multiplier, current_boss, steps_today, day, updated_at
		FROM profiles WHERE user_id = ?
	`, userID)

	var p Profile
	var updated int64
	err := row.Scan(&p.UserID, &p.Username, &p.Level, &p.XP, &p.MaxXP, &p.Streak,
		&p.StarCoins, &p.Gems, &p.StreakShields, &p.Language,
		&p.Multiplier, &p.CurrentBoss, &p.StepsToday, &p.Day, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	return &p, nil
}

// Save upserts p. The last write wins.
func (r *ProfileRepo) Save(ctx context.Context, p *Profile) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, username, level, xp, max_xp, streak, star_coins, gems, streak_shields, language,
			multiplier, current_boss, steps_today, day, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			username = excluded.username,
			level = excluded.level,
			xp = excluded.xp,
			max_xp = excluded.max_xp,
			streak = excluded.streak,
			star_coins = excluded.star_coins,
			gems = excluded.gems,
			streak_shields = excluded.streak_shields,
			language = excluded.language,
			multiplier = excluded.multiplier,
			current_boss = excluded.current_boss,
			steps_today = excluded.steps_today,
			day = excluded.day,
			updated_at = excluded.updated_at
	`, p.UserID, p.Username, p.Level, p.XP, p.MaxXP, p.Streak, p.StarCoins, p.Gems,
		p.StreakShields, p.Language, p.Multiplier, p.CurrentBoss, p.StepsToday, p.Day, p.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("profile save: %w", err)
	}
	return nil
}

// Leaderboard orders players by level, then XP, highest first.
func (r *ProfileRepo) Leaderboard(ctx context.Context, limit int) ([]RankEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, username, level, xp, streak
		FROM profiles
		ORDER BY level DESC, xp DESC, user_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	out := []RankEntry{}
	for rows.Next() {
		e := RankEntry{Rank: len(out) + 1}
		if err := rows.Scan(&e.UserID, &e.Username, &e.Level, &e.XP, &e.Streak); err != nil {
			return nil, fmt.Errorf("leaderboard scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard rows: %w", err)
	}
	return out, nil
}
