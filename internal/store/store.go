// Package store opens the reservation store named by DATABASE_URL. The URL
// scheme picks the backend: postgres:// or postgresql:// for Postgres,
// mysql:// for MySQL.
package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/example/cafe-reservations/internal/db"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/infrastructure/mysql"
	"github.com/example/cafe-reservations/internal/infrastructure/postgres"
	"github.com/example/cafe-reservations/internal/migrate"
)

// Handle is an open store plus the migration target for the same database.
type Handle struct {
	reservation.Store
	Migrations migrate.Target
}

// DialectOf maps a database URL onto its migration dialect.
func DialectOf(databaseURL string) (migrate.Dialect, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		return migrate.Postgres, nil
	case "mysql":
		return migrate.MySQL, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme %q (want postgres or mysql)", u.Scheme)
	}
}

// Open connects to the database and verifies it answers a ping.
func Open(ctx context.Context, databaseURL string) (*Handle, error) {
	dialect, err := DialectOf(databaseURL)
	if err != nil {
		return nil, err
	}

	var h *Handle
	switch dialect {
	case migrate.MySQL:
		d, err := mysql.Open(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		s := mysql.NewStore(d)
		h = &Handle{Store: s, Migrations: migrate.ForMySQL(s.DB())}
	default:
		d, err := db.Open(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s := postgres.NewStore(d)
		h = &Handle{Store: s, Migrations: migrate.ForPostgres(s.DB())}
	}

	if err := h.Ping(ctx); err != nil {
		h.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return h, nil
}

// Migrate applies pending migrations.
func (h *Handle) Migrate(ctx context.Context) error {
	return migrate.Up(ctx, h.Migrations)
}
