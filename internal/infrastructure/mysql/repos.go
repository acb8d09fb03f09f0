package mysql

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/domain/user"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

type CustomerRepo struct{ db *sqlx.DB }

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (reservation.Customer, error) {
	var c reservation.Customer
	err := r.db.GetContext(ctx, &c,
		"SELECT id, name, email, phone, `newsletterSignup`, `createdAt`, `updatedAt` FROM customers WHERE email = ? LIMIT 1",
		email)
	if err != nil {
		return reservation.Customer{}, wrapNotFound(err)
	}
	return c, nil
}

func (r *CustomerRepo) Create(ctx context.Context, c reservation.Customer) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, `newsletterSignup`) VALUES (?, ?, ?, ?)",
		c.Name, c.Email, c.Phone, c.NewsletterSignup)
	if isDuplicateKey(err) {
		return 0, fmt.Errorf("insert customer %q: %w", c.Email, internaltypes.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	return res.LastInsertId()
}

func (r *CustomerRepo) Update(ctx context.Context, c reservation.Customer) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE customers SET name = ?, phone = COALESCE(?, phone), `newsletterSignup` = ? WHERE id = ?",
		c.Name, c.Phone, c.NewsletterSignup, c.ID)
	return err
}

type ReservationRepo struct{ db *sqlx.DB }

func (r *ReservationRepo) ConfirmedTables(ctx context.Context, key availability.BookingKey, status string) ([]availability.TableID, error) {
	var nums []int
	err := r.db.SelectContext(ctx, &nums,
		"SELECT `tableNumber` FROM reservations WHERE `reservationDate` = ? AND `timeSlot` = ? AND status = ?",
		key.Date, key.Slot, status)
	if err != nil {
		return nil, err
	}
	out := make([]availability.TableID, 0, len(nums))
	for _, n := range nums {
		out = append(out, availability.TableID(n))
	}
	return out, nil
}

func (r *ReservationRepo) Create(ctx context.Context, res reservation.Reservation) (int64, error) {
	if res.Status == "" {
		res.Status = reservation.StatusConfirmed
	}
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO reservations (`customerId`, `reservationDate`, `timeSlot`, `tableNumber`, `guestCount`, `specialRequests`, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		res.CustomerID, res.Date, res.TimeSlot, res.TableNumber, res.GuestCount, res.SpecialRequests, string(res.Status))
	if isDuplicateKey(err) {
		return 0, fmt.Errorf("insert reservation: %w", availability.ErrTableTaken)
	}
	if err != nil {
		return 0, fmt.Errorf("insert reservation: %w", err)
	}
	return result.LastInsertId()
}

func (r *ReservationRepo) ListWithCustomers(ctx context.Context) ([]reservation.ReservationWithCustomer, error) {
	out := []reservation.ReservationWithCustomer{}
	err := r.db.SelectContext(ctx, &out, "SELECT r.id, r.`customerId`, r.`reservationDate`, r.`timeSlot`, r.`tableNumber`, r.`guestCount`, r.status, "+
		"r.`specialRequests`, r.`createdAt`, r.`updatedAt`, c.name AS `customerName`, c.email AS `customerEmail` "+
		"FROM reservations r INNER JOIN customers c ON r.`customerId` = c.id "+
		"ORDER BY r.`reservationDate`, r.`timeSlot`")
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepo) Cancel(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE reservations SET status = ? WHERE id = ?",
		string(reservation.StatusCancelled), id)
	return err
}

type SubscriberRepo struct{ db *sqlx.DB }

func (r *SubscriberRepo) GetByEmail(ctx context.Context, email string) (reservation.Subscriber, error) {
	var s reservation.Subscriber
	err := r.db.GetContext(ctx, &s,
		"SELECT id, email, name, `subscribedAt`, `isActive` FROM `newsletterSubscribers` WHERE email = ?", email)
	if err != nil {
		return reservation.Subscriber{}, wrapNotFound(err)
	}
	return s, nil
}

func (r *SubscriberRepo) Create(ctx context.Context, s reservation.Subscriber) (int64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO `newsletterSubscribers` (email, name) VALUES (?, ?)", s.Email, s.Name)
	if isDuplicateKey(err) {
		return 0, fmt.Errorf("insert subscriber: %w", internaltypes.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("insert subscriber: %w", err)
	}
	return res.LastInsertId()
}

func (r *SubscriberRepo) ListActive(ctx context.Context) ([]reservation.Subscriber, error) {
	out := []reservation.Subscriber{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT id, email, name, `subscribedAt`, `isActive` FROM `newsletterSubscribers` WHERE `isActive` = true ORDER BY `subscribedAt`")
	if err != nil {
		return nil, err
	}
	return out, nil
}

type UserRepo struct{ db *sqlx.DB }

func (r *UserRepo) Create(ctx context.Context, u user.User) (int64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO admin_users (username, password_hash) VALUES (?, ?)", u.Username, u.PasswordHash)
	if isDuplicateKey(err) {
		return 0, fmt.Errorf("user %q: %w", u.Username, internaltypes.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	err := r.db.GetContext(ctx, &u, "SELECT id, username, password_hash, created_at FROM admin_users WHERE username = ?", username)
	if err != nil {
		return user.User{}, wrapNotFound(err)
	}
	return u, nil
}
