package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/cafe-reservations/internal/domain/reservation"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

const (
	MsgAlreadySubscribed = "You're already subscribed to our newsletter!"
	MsgSubscribed        = "Thank you for subscribing to our newsletter!"
)

type SubscribeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Newsletter struct {
	Subscribers reservation.SubscriberRepo
	Log         *zap.Logger
}

func (n Newsletter) log() *zap.Logger {
	if n.Log == nil {
		return zap.NewNop()
	}
	return n.Log
}

// Subscribe is idempotent by email.
func (n Newsletter) Subscribe(ctx context.Context, req reservation.SubscribeRequest) (SubscribeResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return SubscribeResult{}, err
	}

	_, err := n.Subscribers.GetByEmail(ctx, req.Email)
	if err == nil {
		return SubscribeResult{Success: true, Message: MsgAlreadySubscribed}, nil
	}
	if !errors.Is(err, internaltypes.ErrNotFound) {
		return SubscribeResult{}, fmt.Errorf("lookup subscriber: %w", err)
	}

	_, err = n.Subscribers.Create(ctx, reservation.Subscriber{
		Email: req.Email,
		Name:  reservation.OptionalString(req.Name),
	})
	if errors.Is(err, internaltypes.ErrConflict) {
		// lost a race with a concurrent subscribe for the same address
		return SubscribeResult{Success: true, Message: MsgAlreadySubscribed}, nil
	}
	if err != nil {
		return SubscribeResult{}, err
	}
	n.log().Info("newsletter subscription", zap.String("email", req.Email))
	return SubscribeResult{Success: true, Message: MsgSubscribed}, nil
}

func (n Newsletter) ListActive(ctx context.Context) ([]reservation.Subscriber, error) {
	return n.Subscribers.ListActive(ctx)
}
