package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/db"
	"github.com/Skotchmaster/petstore/pkg/events"
	"github.com/Skotchmaster/petstore/pkg/logging"
	"github.com/Skotchmaster/petstore/pkg/metrics"
	"github.com/Skotchmaster/petstore/pkg/middleware/auth"
)

const orderNumberAttempts = 3

var errOrderNumberTaken = errors.New("order number taken")

type OrderService struct {
	Repo    *repo.GormRepo
	Pricing Pricing
	Events  EventPublisher
	Metrics *metrics.OrderMetrics
	Now     func() time.Time
	// NewNumber defaults to NewOrderNumber.
	NewNumber func(time.Time) (string, error)
}

type OrderListFilter struct {
	Status string
	Offset int
	Limit  int
}

type orderLine struct {
	productID uint
	quantity  int
}

// mergeLines sums quantities per product, keeping first-seen order.
func mergeLines(items []transport.OrderItemRequest) []orderLine {
	idx := make(map[uint]int, len(items))
	out := make([]orderLine, 0, len(items))
	for _, it := range items {
		if i, ok := idx[it.ProductID]; ok {
			out[i].quantity += it.Quantity
			continue
		}
		idx[it.ProductID] = len(out)
		out = append(out, orderLine{productID: it.ProductID, quantity: it.Quantity})
	}
	return out
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OrderService) newNumber() (string, error) {
	if s.NewNumber != nil {
		return s.NewNumber(s.now())
	}
	return NewOrderNumber(s.now())
}

// Create prices the order from current product prices, reserves stock and
// writes the order with its items in one transaction.
func (s *OrderService) Create(ctx context.Context, p auth.Principal, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With().Str("svc", "order.create").Logger()

	if len(req.Items) == 0 {
		s.Metrics.IncRejected("empty")
		return nil, newError(ErrValidation, "Order must contain at least one item")
	}
	lines := mergeLines(req.Items)
	for _, line := range lines {
		if line.productID == 0 || line.quantity <= 0 {
			s.Metrics.IncRejected("invalid_line")
			return nil, newError(ErrValidation, "Each item needs a product_id and a positive quantity")
		}
	}
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, newError(ErrValidation, "Invalid payment method")
	}
	country := strings.TrimSpace(req.ShippingCountry)
	if country == "" {
		country = transport.DefaultCountry
	}
	clearCart := req.ClearCart == nil || *req.ClearCart

	var orderID uint
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
			items := make([]models.OrderItem, 0, len(lines))
			subtotal := decimal.Zero

			for _, line := range lines {
				product, err := tx.GetProduct(ctx, line.productID)
				if err != nil || !product.IsActive {
					if err != nil && !isRecordNotFound(err) {
						return err
					}
					return newError(ErrUnavailable, "Product %d is not available", line.productID)
				}
				ok, err := tx.TakeStock(ctx, product.ID, line.quantity)
				if err != nil {
					return err
				}
				if !ok {
					return newError(ErrInsufficientStock, "Insufficient stock for product %s", product.Name)
				}

				lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.quantity))).Round(2)
				subtotal = subtotal.Add(lineTotal)
				items = append(items, models.OrderItem{
					ProductID:  product.ID,
					Quantity:   line.quantity,
					UnitPrice:  product.Price,
					TotalPrice: lineTotal,
				})
			}

			quote := s.Pricing.Quote(subtotal)
			number, err := s.newNumber()
			if err != nil {
				return err
			}
			order := &models.Order{
				UserID:           p.UserID,
				OrderNumber:      number,
				Status:           models.OrderStatusPending,
				TotalAmount:      quote.Total,
				PaymentMethod:    method,
				ShippingAddress:  strings.TrimSpace(req.ShippingAddress),
				ShippingCity:     strings.TrimSpace(req.ShippingCity),
				ShippingState:    strings.TrimSpace(req.ShippingState),
				ShippingPostcode: strings.TrimSpace(req.ShippingPostcode),
				ShippingCountry:  country,
				ShippingPhone:    strings.TrimSpace(req.ShippingPhone),
				ShippingFee:      quote.ShippingFee,
				Tax:              quote.Tax,
				Notes:            req.Notes,
				Items:            items,
			}
			if err := tx.CreateOrder(ctx, order); err != nil {
				if db.IsUniqueViolation(err) {
					return errOrderNumberTaken
				}
				return err
			}
			if clearCart {
				if err := tx.ClearCart(ctx, p.UserID); err != nil {
					return err
				}
			}
			orderID = order.ID
			return nil
		})
		if !errors.Is(err, errOrderNumberTaken) {
			break
		}
		l.Warn().Int("attempt", attempt).Msg("order_number_collision")
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrUnavailable):
			s.Metrics.IncRejected("unavailable")
		case errors.Is(err, ErrInsufficientStock):
			s.Metrics.IncRejected("insufficient_stock")
		}
		return nil, err
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.Metrics.IncCreated()
	l.Info().Uint("order_id", order.ID).Str("order_number", order.OrderNumber).Msg("order_created")
	publish(ctx, s.Events, events.TopicOrders, orderKey(order.ID), "order_created", map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
		"items":        len(order.Items),
	})
	return order, nil
}

// Get returns the order when the caller owns it or is an admin.
func (s *OrderService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "Order not found")
	}
	if o.UserID != p.UserID && !p.IsAdmin {
		return nil, newError(ErrForbidden, "Not enough permissions")
	}
	return o, nil
}

// List returns every order for admins and only the caller's own otherwise, newest first.
func (s *OrderService) List(ctx context.Context, p auth.Principal, f OrderListFilter) ([]models.Order, int64, error) {
	rf := repo.OrderFilter{Offset: f.Offset, Limit: f.Limit}
	if !p.IsAdmin {
		uid := p.UserID
		rf.UserID = &uid
	}
	if strings.TrimSpace(f.Status) != "" {
		st, err := models.ParseOrderStatus(f.Status)
		if err != nil {
			return nil, 0, newError(ErrValidation, "Invalid order status")
		}
		rf.Status = st
	}
	return s.Repo.ListOrders(ctx, rf)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, raw string) (*models.Order, error) {
	to, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, newError(ErrValidation, "Invalid order status")
	}
	return s.transition(ctx, id, to)
}

// Cancel moves the order to cancelled and returns its stock. Cancelling a
// cancelled order is a no-op.
func (s *OrderService) Cancel(ctx context.Context, p auth.Principal, id uint) (*models.Order, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, models.OrderStatusCancelled)
}

func (s *OrderService) transition(ctx context.Context, id uint, to models.OrderStatus) (*models.Order, error) {
	var (
		result  *models.Order
		from    models.OrderStatus
		changed bool
	)
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return notFound(err, "Order not found")
		}
		from = o.Status
		if from == to {
			result = o
			return nil
		}
		if !models.CanTransition(from, to) {
			return newError(ErrInvalidTransition, "Cannot change order status from %s to %s", from, to)
		}

		ok, err := tx.SetOrderStatus(ctx, id, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return newError(ErrInvalidTransition, "Order status changed concurrently, please retry")
		}
		if to == models.OrderStatusCancelled {
			for _, it := range o.Items {
				if err := tx.ReturnStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		result, err = tx.GetOrder(ctx, id)
		changed = err == nil
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.Metrics.IncTransition(string(from), string(to))
		logging.FromContext(ctx).Info().
			Uint("order_id", id).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("order_status_changed")
		publish(ctx, s.Events, events.TopicOrders, orderKey(id), "order_status_changed", map[string]any{
			"order_id":     id,
			"order_number": result.OrderNumber,
			"user_id":      result.UserID,
			"from":         from,
			"to":           to,
		})
	}
	return result, nil
}

func orderKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
