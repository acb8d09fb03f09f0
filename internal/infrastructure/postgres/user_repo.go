package postgres

import (
	"context"
	"fmt"

	"github.com/example/cafe-reservations/internal/db"
	"github.com/example/cafe-reservations/internal/domain/user"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

type UserRepo struct{ db *db.DB }

func NewUserRepo(d *db.DB) *UserRepo { return &UserRepo{db: d} }

func (r *UserRepo) Create(ctx context.Context, u user.User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO admin_users (username, password_hash) VALUES ($1,$2) RETURNING id`,
		u.Username, u.PasswordHash,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("user %q: %w", u.Username, internaltypes.ErrConflict)
	}
	return id, db.WrapNotFound(err)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, username, password_hash, created_at FROM admin_users WHERE username=$1`, username)
	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return user.User{}, db.WrapNotFound(err)
	}
	return u, nil
}
