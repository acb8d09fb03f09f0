package postgres

import (
	"context"
	"fmt"

	"github.com/example/cafe-reservations/internal/db"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

type CustomerRepo struct{ db *db.DB }

func NewCustomerRepo(d *db.DB) *CustomerRepo { return &CustomerRepo{db: d} }

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (reservation.Customer, error) {
	var c reservation.Customer
	err := r.db.QueryRow(ctx, `
SELECT id, name, email, phone, "newsletterSignup", "createdAt", "updatedAt"
FROM customers
WHERE email=$1
LIMIT 1`, email).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.NewsletterSignup, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return reservation.Customer{}, db.WrapNotFound(err)
	}
	return c, nil
}

func (r *CustomerRepo) Create(ctx context.Context, c reservation.Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO customers(name, email, phone, "newsletterSignup")
VALUES ($1,$2,$3,$4)
RETURNING id`, c.Name, c.Email, c.Phone, c.NewsletterSignup).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("insert customer %q: %w", c.Email, internaltypes.ErrConflict)
	}
	return id, db.WrapNotFound(err)
}

// Update overwrites name and newsletter flag; a nil phone keeps the stored one.
func (r *CustomerRepo) Update(ctx context.Context, c reservation.Customer) error {
	return r.db.Exec(ctx, `
UPDATE customers
SET name=$2, phone=COALESCE($3, phone), "newsletterSignup"=$4, "updatedAt"=now()
WHERE id=$1`, c.ID, c.Name, c.Phone, c.NewsletterSignup)
}
