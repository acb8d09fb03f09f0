package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

const MsgFullyBooked = "Sorry, all tables are booked for this time slot. Please select another time."

type BookedTable struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	TimeSlot    string `json:"timeSlot"`
	TableNumber int    `json:"tableNumber"`
	GuestCount  int    `json:"guestCount"`
}

// BookingResult is the outcome of Create. A fully booked slot is reported
// with Success=false and a nil error.
type BookingResult struct {
	Success     bool         `json:"success"`
	Reservation *BookedTable `json:"reservation,omitempty"`
	Message     string       `json:"message,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type Booking struct {
	Engine *availability.Engine
	Store  reservation.Store
	Log    *zap.Logger
}

func (b Booking) log() *zap.Logger {
	if b.Log == nil {
		return zap.NewNop()
	}
	return b.Log
}

func (b Booking) Create(ctx context.Context, req reservation.CreateRequest) (BookingResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return BookingResult{}, err
	}

	key := availability.BookingKey{Date: req.Date, Slot: req.TimeSlot}
	var id int64
	table, ok, err := b.Engine.Reserve(ctx, key, func(ctx context.Context, table availability.TableID) error {
		customerID, err := b.upsertCustomer(ctx, req)
		if err != nil {
			return err
		}
		id, err = b.Store.Reservations().Create(ctx, reservation.Reservation{
			CustomerID:      customerID,
			Date:            req.Date,
			TimeSlot:        req.TimeSlot,
			TableNumber:     int(table),
			GuestCount:      req.GuestCount,
			Status:          reservation.StatusConfirmed,
			SpecialRequests: reservation.OptionalString(req.SpecialRequests),
		})
		return err
	})
	if err != nil {
		return BookingResult{}, fmt.Errorf("create reservation %s: %w", key, err)
	}
	if !ok {
		b.log().Info("slot fully booked", zap.Stringer("key", key))
		return BookingResult{Success: false, Error: MsgFullyBooked}, nil
	}

	b.log().Info("reservation created",
		zap.Int64("id", id), zap.Stringer("key", key), zap.Int("table", int(table)), zap.Int("guests", req.GuestCount))
	return BookingResult{
		Success: true,
		Reservation: &BookedTable{
			ID:          id,
			Date:        req.Date,
			TimeSlot:    req.TimeSlot,
			TableNumber: int(table),
			GuestCount:  req.GuestCount,
		},
		Message: fmt.Sprintf("Your table has been reserved! Table #%d on %s at %s.", table, req.Date, req.TimeSlot),
	}, nil
}

// upsertCustomer finds the customer by email, overwriting the name, keeping
// the stored phone when none is given and OR-ing the newsletter flag.
func (b Booking) upsertCustomer(ctx context.Context, req reservation.CreateRequest) (int64, error) {
	customers := b.Store.Customers()
	c, err := customers.GetByEmail(ctx, req.Email)
	if errors.Is(err, internaltypes.ErrNotFound) {
		var id int64
		id, err = customers.Create(ctx, reservation.Customer{
			Name:             req.Name,
			Email:            req.Email,
			Phone:            reservation.OptionalString(req.Phone),
			NewsletterSignup: req.NewsletterSignup,
		})
		if !errors.Is(err, internaltypes.ErrConflict) {
			return id, err
		}
		// a concurrent booking created the customer first; update theirs
		c, err = customers.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup customer: %w", err)
	}

	c.Name = req.Name
	c.Phone = reservation.OptionalString(req.Phone)
	c.NewsletterSignup = c.NewsletterSignup || req.NewsletterSignup
	if err := customers.Update(ctx, c); err != nil {
		return 0, fmt.Errorf("update customer: %w", err)
	}
	return c.ID, nil
}

// Cancel marks a reservation cancelled. An id that matches nothing is not
// an error.
func (b Booking) Cancel(ctx context.Context, id int64) error {
	if id <= 0 {
		return &reservation.ValidationError{Field: "id", Message: "Reservation ID is required"}
	}
	if err := b.Store.Reservations().Cancel(ctx, id); err != nil {
		return fmt.Errorf("cancel reservation %d: %w", id, err)
	}
	b.log().Info("reservation cancelled", zap.Int64("id", id))
	return nil
}

func (b Booking) List(ctx context.Context) ([]reservation.ReservationWithCustomer, error) {
	return b.Store.Reservations().ListWithCustomers(ctx)
}
