package reservation

import (
	"context"

	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/domain/user"
)

type CustomerRepo interface {
	GetByEmail(ctx context.Context, email string) (Customer, error)
	Create(ctx context.Context, c Customer) (int64, error)
	Update(ctx context.Context, c Customer) error
}

type ReservationRepo interface {
	availability.Lookup

	Create(ctx context.Context, r Reservation) (int64, error)
	ListWithCustomers(ctx context.Context) ([]ReservationWithCustomer, error)
	Cancel(ctx context.Context, id int64) error
}

type SubscriberRepo interface {
	GetByEmail(ctx context.Context, email string) (Subscriber, error)
	Create(ctx context.Context, s Subscriber) (int64, error)
	ListActive(ctx context.Context) ([]Subscriber, error)
}

// Store bundles the repositories of one database backend.
type Store interface {
	Customers() CustomerRepo
	Reservations() ReservationRepo
	Subscribers() SubscriberRepo
	Admins() user.Repo

	Ping(ctx context.Context) error
	Close()
}
