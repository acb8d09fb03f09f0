package user

import (
	"context"
	"time"
)

// User is a staff account allowed into the admin endpoints.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Repo interface {
	Create(ctx context.Context, u User) (int64, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}
