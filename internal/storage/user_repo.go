package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts u. A duplicate email returns ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("user create: %w", ErrConflict)
		}
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = ?
	`, email))
}

func (r *UserRepo) Get(ctx context.Context, id string) (*User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = ?
	`, id))
}

func (r *UserRepo) scanOne(row *sql.Row) (*User, error) {
	var u User
	var created int64
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	return &u, nil
}
