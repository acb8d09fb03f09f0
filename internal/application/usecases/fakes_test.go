package usecases

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/domain/user"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

// memStore is an in-memory reservation.Store.
type memStore struct {
	mu           sync.Mutex
	customers    map[int64]reservation.Customer
	reservations map[int64]reservation.Reservation
	nextID       int64

	failInsert error
	// rival is inserted in place of the next new customer, which then
	// fails with ErrConflict, as when a concurrent booking wins the insert.
	rival *reservation.Customer
}

func newMemStore() *memStore {
	return &memStore{
		customers:    map[int64]reservation.Customer{},
		reservations: map[int64]reservation.Reservation{},
	}
}

func (s *memStore) Customers() reservation.CustomerRepo       { return memCustomers{s} }
func (s *memStore) Reservations() reservation.ReservationRepo { return memReservations{s} }
func (s *memStore) Subscribers() reservation.SubscriberRepo   { return nil }
func (s *memStore) Admins() user.Repo                         { return nil }
func (s *memStore) Ping(context.Context) error                { return nil }
func (s *memStore) Close()                                    {}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memCustomers struct{ s *memStore }

func (m memCustomers) GetByEmail(_ context.Context, email string) (reservation.Customer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return reservation.Customer{}, internaltypes.ErrNotFound
}

func (m memCustomers) Create(_ context.Context, c reservation.Customer) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if r := m.s.rival; r != nil {
		m.s.rival = nil
		r.ID = m.s.id()
		m.s.customers[r.ID] = *r
		return 0, fmt.Errorf("insert customer %q: %w", c.Email, internaltypes.ErrConflict)
	}
	c.ID = m.s.id()
	m.s.customers[c.ID] = c
	return c.ID, nil
}

func (m memCustomers) Update(_ context.Context, c reservation.Customer) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	old := m.s.customers[c.ID]
	old.Name = c.Name
	if c.Phone != nil {
		old.Phone = c.Phone
	}
	old.NewsletterSignup = c.NewsletterSignup
	m.s.customers[c.ID] = old
	return nil
}

type memReservations struct{ s *memStore }

func (m memReservations) ConfirmedTables(_ context.Context, key availability.BookingKey, status string) ([]availability.TableID, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []availability.TableID
	for _, r := range m.s.reservations {
		if r.Date == key.Date && r.TimeSlot == key.Slot && string(r.Status) == status {
			out = append(out, availability.TableID(r.TableNumber))
		}
	}
	return out, nil
}

func (m memReservations) Create(_ context.Context, r reservation.Reservation) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failInsert != nil {
		return 0, m.s.failInsert
	}
	r.ID = m.s.id()
	m.s.reservations[r.ID] = r
	return r.ID, nil
}

func (m memReservations) ListWithCustomers(context.Context) ([]reservation.ReservationWithCustomer, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []reservation.ReservationWithCustomer
	for _, r := range m.s.reservations {
		c := m.s.customers[r.CustomerID]
		out = append(out, reservation.ReservationWithCustomer{Reservation: r, CustomerName: c.Name, CustomerEmail: c.Email})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memReservations) Cancel(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if r, ok := m.s.reservations[id]; ok {
		r.Status = reservation.StatusCancelled
		m.s.reservations[id] = r
	}
	return nil
}

type MockSubscriberRepo struct {
	mock.Mock
}

func (m *MockSubscriberRepo) GetByEmail(ctx context.Context, email string) (reservation.Subscriber, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(reservation.Subscriber), args.Error(1)
}

func (m *MockSubscriberRepo) Create(ctx context.Context, s reservation.Subscriber) (int64, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubscriberRepo) ListActive(ctx context.Context) ([]reservation.Subscriber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reservation.Subscriber), args.Error(1)
}
