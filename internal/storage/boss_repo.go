package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type BossRepo struct {
	db *sql.DB
}

func NewBossRepo(db *sql.DB) *BossRepo {
	return &BossRepo{db: db}
}

func (r *BossRepo) Load(ctx context.Context, userID string) ([]BossRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT boss_id, hp FROM boss_hp WHERE user_id = ? ORDER BY boss_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("boss load: %w", err)
	}
	defer rows.Close()

	var out []BossRow
	for rows.Next() {
		var b BossRow
		if err := rows.Scan(&b.BossID, &b.HP); err != nil {
			return nil, fmt.Errorf("boss scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Save replaces the stored boss HP of userID with bosses.
func (r *BossRepo) Save(ctx context.Context, userID string, bosses []BossRow) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM boss_hp WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("boss clear: %w", err)
		}
		for _, b := range bosses {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO boss_hp (user_id, boss_id, hp) VALUES (?, ?, ?)
			`, userID, b.BossID, b.HP); err != nil {
				return fmt.Errorf("boss insert: %w", err)
			}
		}
		return nil
	})
}
