package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/pkg/events"
	"github.com/Skotchmaster/petstore/pkg/logging"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// ProductIndex mirrors active products into a full-text index.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) ([]uint, int64, error)
}

type GuestCartStore interface {
	GuestCart(ctx context.Context, token string) (map[uint]int, error)
	AddGuestCartItem(ctx context.Context, token string, productID uint, qty int, ttl time.Duration) (int, error)
	SetGuestCartItem(ctx context.Context, token string, productID uint, qty int, ttl time.Duration) error
	RemoveGuestCartItem(ctx context.Context, token string, productID uint) error
	ClearGuestCart(ctx context.Context, token string) error
}

// publish sends a domain event after commit. Delivery failures are logged and
// never fail the request.
func publish(ctx context.Context, p EventPublisher, topic, key, eventType string, data any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, topic, key, events.New(eventType, data)); err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("topic", topic).
			Str("event", eventType).
			Msg("publish_event_failed")
	}
}
