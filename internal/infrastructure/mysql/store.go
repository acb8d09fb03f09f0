package mysql

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/domain/user"
)

// Store is the MySQL-backed reservation.Store.
type Store struct {
	db *sqlx.DB

	customers    *CustomerRepo
	reservations *ReservationRepo
	subscribers  *SubscriberRepo
	users        *UserRepo
}

func NewStore(d *sqlx.DB) *Store {
	return &Store{
		db:           d,
		customers:    &CustomerRepo{db: d},
		reservations: &ReservationRepo{db: d},
		subscribers:  &SubscriberRepo{db: d},
		users:        &UserRepo{db: d},
	}
}

func (s *Store) Customers() reservation.CustomerRepo       { return s.customers }
func (s *Store) Reservations() reservation.ReservationRepo { return s.reservations }
func (s *Store) Subscribers() reservation.SubscriberRepo   { return s.subscribers }
func (s *Store) Admins() user.Repo                         { return s.users }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *Store) Close()                         { _ = s.db.Close() }

// DB exposes the handle for migrations.
func (s *Store) DB() *sqlx.DB { return s.db }
