package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type InventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepo(db *sql.DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

func (r *InventoryRepo) Load(ctx context.Context, userID string) ([]InventoryRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id, qty FROM inventory WHERE user_id = ? ORDER BY item_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("inventory load: %w", err)
	}
	defer rows.Close()

	var out []InventoryRow
	for rows.Next() {
		var it InventoryRow
		if err := rows.Scan(&it.ItemID, &it.Qty); err != nil {
			return nil, fmt.Errorf("inventory scan: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Save replaces the stored inventory of userID with items.
func (r *InventoryRepo) Save(ctx context.Context, userID string, items []InventoryRow) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM inventory WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("inventory clear: %w", err)
		}
		for _, it := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO inventory (user_id, item_id, qty) VALUES (?, ?, ?)
			`, userID, it.ItemID, it.Qty); err != nil {
				return fmt.Errorf("inventory insert: %w", err)
			}
		}
		return nil
	})
}
