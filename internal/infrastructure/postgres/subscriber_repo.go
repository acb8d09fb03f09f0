package postgres

import (
	"context"
	"fmt"

	"github.com/example/cafe-reservations/internal/db"
	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

type SubscriberRepo struct{ db *db.DB }

func NewSubscriberRepo(d *db.DB) *SubscriberRepo { return &SubscriberRepo{db: d} }

func (r *SubscriberRepo) GetByEmail(ctx context.Context, email string) (reservation.Subscriber, error) {
	var s reservation.Subscriber
	err := r.db.QueryRow(ctx, `
SELECT id, email, name, "subscribedAt", "isActive"
FROM "newsletterSubscribers"
WHERE email=$1`, email).Scan(&s.ID, &s.Email, &s.Name, &s.SubscribedAt, &s.IsActive)
	if err != nil {
		return reservation.Subscriber{}, db.WrapNotFound(err)
	}
	return s, nil
}

func (r *SubscriberRepo) Create(ctx context.Context, s reservation.Subscriber) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO "newsletterSubscribers"(email, name)
VALUES ($1,$2)
RETURNING id`, s.Email, s.Name).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("insert subscriber: %w", internaltypes.ErrConflict)
	}
	return id, db.WrapNotFound(err)
}

func (r *SubscriberRepo) ListActive(ctx context.Context) ([]reservation.Subscriber, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, email, name, "subscribedAt", "isActive"
FROM "newsletterSubscribers"
WHERE "isActive" = true
ORDER BY "subscribedAt"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []reservation.Subscriber{}
	for rows.Next() {
		var s reservation.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.SubscribedAt, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
