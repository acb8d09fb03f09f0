package postgres

import (
	"context"
	"fmt"

	"github.com/example/cafe-reservations/internal/availability"
	"github.com/example/cafe-reservations/internal/db"
	"github.com/example/cafe-reservations/internal/domain/reservation"
)

type ReservationRepo struct{ db *db.DB }

func NewReservationRepo(d *db.DB) *ReservationRepo { return &ReservationRepo{db: d} }

func (r *ReservationRepo) ConfirmedTables(ctx context.Context, key availability.BookingKey, status string) ([]availability.TableID, error) {
	rows, err := r.db.Query(ctx, `
SELECT "tableNumber"
FROM reservations
WHERE "reservationDate"=$1 AND "timeSlot"=$2 AND status=$3`, key.Date, key.Slot, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []availability.TableID
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, availability.TableID(n))
	}
	return out, rows.Err()
}

func (r *ReservationRepo) Create(ctx context.Context, res reservation.Reservation) (int64, error) {
	if res.Status == "" {
		res.Status = reservation.StatusConfirmed
	}
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO reservations("customerId","reservationDate","timeSlot","tableNumber","guestCount","specialRequests",status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id`,
		res.CustomerID, res.Date, res.TimeSlot, res.TableNumber, res.GuestCount, res.SpecialRequests, string(res.Status),
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("insert reservation: %w", availability.ErrTableTaken)
	}
	return id, db.WrapNotFound(err)
}

func (r *ReservationRepo) ListWithCustomers(ctx context.Context) ([]reservation.ReservationWithCustomer, error) {
	rows, err := r.db.Query(ctx, `
SELECT r.id, r."customerId", r."reservationDate", r."timeSlot", r."tableNumber", r."guestCount", r.status,
       r."specialRequests", r."createdAt", r."updatedAt", c.name, c.email
FROM reservations r
INNER JOIN customers c ON r."customerId" = c.id
ORDER BY r."reservationDate", r."timeSlot"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []reservation.ReservationWithCustomer{}
	for rows.Next() {
		var rc reservation.ReservationWithCustomer
		var status string
		if err := rows.Scan(
			&rc.ID, &rc.CustomerID, &rc.Date, &rc.TimeSlot, &rc.TableNumber, &rc.GuestCount, &status,
			&rc.SpecialRequests, &rc.CreatedAt, &rc.UpdatedAt, &rc.CustomerName, &rc.CustomerEmail,
		); err != nil {
			return nil, err
		}
		rc.Status = reservation.Status(status)
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (r *ReservationRepo) Cancel(ctx context.Context, id int64) error {
	return r.db.Exec(ctx, `UPDATE reservations SET status=$2, "updatedAt"=now() WHERE id=$1`,
		id, string(reservation.StatusCancelled))
}
