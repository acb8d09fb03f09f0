package postgres

import (
	"context"

	"github.com/example/cafe-reservations/internal/db"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/domain/user"
)

// Store is the Postgres-backed reservation.Store.
type Store struct {
	db *db.DB

	customers    *CustomerRepo
	reservations *ReservationRepo
	subscribers  *SubscriberRepo
	users        *UserRepo
}

func NewStore(d *db.DB) *Store {
	return &Store{
		db:           d,
		customers:    NewCustomerRepo(d),
		reservations: NewReservationRepo(d),
		subscribers:  NewSubscriberRepo(d),
		users:        NewUserRepo(d),
	}
}

func (s *Store) Customers() reservation.CustomerRepo       { return s.customers }
func (s *Store) Reservations() reservation.ReservationRepo { return s.reservations }
func (s *Store) Subscribers() reservation.SubscriberRepo   { return s.subscribers }
func (s *Store) Admins() user.Repo                         { return s.users }

func (s *Store) Ping(ctx context.Context) error { return s.db.Ping(ctx) }
func (s *Store) Close()                         { s.db.Close() }

// DB exposes the handle for migrations.
func (s *Store) DB() *db.DB { return s.db }
