package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			level INTEGER NOT NULL DEFAULT 1,
			xp INTEGER NOT NULL DEFAULT 0,
			max_xp INTEGER NOT NULL DEFAULT 100,
			streak INTEGER NOT NULL DEFAULT 0,
			star_coins INTEGER NOT NULL DEFAULT 0,
			gems INTEGER NOT NULL DEFAULT 0,
			streak_shields INTEGER NOT NULL DEFAULT 0,
			language TEXT NOT NULL DEFAULT 'en',
			multiplier REAL NOT NULL DEFAULT 1.0,
			current_boss INTEGER NOT NULL DEFAULT 0,
			steps_today INTEGER NOT NULL DEFAULT 0,
			day TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		);`,
		// Append-only audit of habit completions.
		`CREATE TABLE IF NOT EXISTS habit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			habit_id INTEGER NOT NULL,
			xp_gained INTEGER NOT NULL,
			dmg_dealt INTEGER NOT NULL,
			logged_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS inventory (
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			qty INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS boss_hp (
			user_id TEXT NOT NULL,
			boss_id INTEGER NOT NULL,
			hp INTEGER NOT NULL,
			PRIMARY KEY (user_id, boss_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_habit_logs_user ON habit_logs(user_id, logged_at);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_rank ON profiles(level DESC, xp DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Columns added after the first release (ignore if already present).
	alterStmts := []string{
		`ALTER TABLE profiles ADD COLUMN multiplier REAL NOT NULL DEFAULT 1.0;`,
		`ALTER TABLE profiles ADD COLUMN current_boss INTEGER NOT NULL DEFAULT 0;`,
		`ALTER TABLE profiles ADD COLUMN steps_today INTEGER NOT NULL DEFAULT 0;`,
		`ALTER TABLE profiles ADD COLUMN day TEXT NOT NULL DEFAULT '';`,
	}
	for _, stmt := range alterStmts {
		_, err := db.ExecContext(ctx, stmt)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("migrate alter: %w", err)
		}
	}
	return nil
}
