package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/events"
	"github.com/Skotchmaster/petstore/pkg/logging"
)

type CartService struct {
	Repo   *repo.GormRepo
	Guest  GuestCartStore
	Events EventPublisher
}

func (s *CartService) List(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.ListCart(ctx, userID)
}

// Add increments the user's line for the product or creates it. created
// reports whether a new line was inserted.
func (s *CartService) Add(ctx context.Context, userID uint, req transport.CartItemRequest) (*models.CartItem, bool, error) {
	if req.ProductID == 0 {
		return nil, false, newError(ErrValidation, "product_id is required")
	}
	if req.Quantity <= 0 {
		return nil, false, newError(ErrValidation, "Quantity must be at least 1")
	}

	var (
		itemID  uint
		created bool
	)
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		product, err := activeProduct(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}

		have := 0
		if line, err := tx.GetCartLine(ctx, userID, req.ProductID); err == nil {
			have = line.Quantity
		} else if !isRecordNotFound(err) {
			return err
		}
		if req.Quantity > product.Stock-have {
			return newError(ErrInsufficientStock, "Insufficient stock")
		}

		item := &models.CartItem{UserID: userID, ProductID: req.ProductID, Quantity: req.Quantity}
		created, err = tx.AddToCart(ctx, item)
		if err != nil {
			return err
		}
		itemID = item.ID
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	item, err := s.Repo.GetCartItem(ctx, itemID, userID)
	if err != nil {
		return nil, false, err
	}
	publish(ctx, s.Events, events.TopicCart, cartKey(userID), "cart_item_added", map[string]any{
		"user_id":    userID,
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})
	return item, created, nil
}

// UpdateQuantity sets the line quantity; zero or less removes the line and
// reports removed.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uint, qty int) (*models.CartItem, bool, error) {
	item, err := s.Repo.GetCartItem(ctx, itemID, userID)
	if err != nil {
		return nil, false, notFound(err, "Cart item not found")
	}
	if qty <= 0 {
		if err := s.Repo.DeleteCartItem(ctx, itemID, userID); err != nil {
			return nil, false, notFound(err, "Cart item not found")
		}
		return nil, true, nil
	}

	product, err := activeProduct(ctx, s.Repo, item.ProductID)
	if err != nil {
		return nil, false, err
	}
	if qty > product.Stock {
		return nil, false, newError(ErrInsufficientStock, "Insufficient stock")
	}
	if err := s.Repo.SetCartQuantity(ctx, itemID, userID, qty); err != nil {
		return nil, false, err
	}
	updated, err := s.Repo.GetCartItem(ctx, itemID, userID)
	if err != nil {
		return nil, false, notFound(err, "Cart item not found")
	}
	return updated, false, nil
}

func (s *CartService) Remove(ctx context.Context, userID, itemID uint) error {
	if err := s.Repo.DeleteCartItem(ctx, itemID, userID); err != nil {
		return notFound(err, "Cart item not found")
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	return s.Repo.ClearCart(ctx, userID)
}

// MergeGuest folds the guest cart behind token into the user's cart and drops
// the guest cart. Unavailable products are skipped and quantities are capped
// at current stock. It returns how many lines were merged.
func (s *CartService) MergeGuest(ctx context.Context, userID uint, token string) (int, []models.CartItem, error) {
	if s.Guest == nil {
		return 0, nil, newError(ErrUnavailable, "Guest carts are not enabled")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil, newError(ErrValidation, "Missing X-Cart-Token header")
	}

	guest, err := s.Guest.GuestCart(ctx, token)
	if err != nil {
		return 0, nil, err
	}

	l := logging.FromContext(ctx).With().Str("svc", "cart.merge").Logger()
	merged := 0
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		for productID, qty := range guest {
			product, err := activeProduct(ctx, tx, productID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					l.Debug().Uint("product_id", productID).Msg("skip_unavailable_product")
					continue
				}
				return err
			}

			have := 0
			if line, err := tx.GetCartLine(ctx, userID, productID); err == nil {
				have = line.Quantity
			} else if !isRecordNotFound(err) {
				return err
			}
			add := min(qty, product.Stock-have)
			if add <= 0 {
				continue
			}
			if _, err := tx.AddToCart(ctx, &models.CartItem{UserID: userID, ProductID: productID, Quantity: add}); err != nil {
				return err
			}
			merged++
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	if err := s.Guest.ClearGuestCart(ctx, token); err != nil {
		l.Warn().Err(err).Msg("clear_guest_cart_failed")
	}
	items, err := s.Repo.ListCart(ctx, userID)
	if err != nil {
		return 0, nil, err
	}
	publish(ctx, s.Events, events.TopicCart, cartKey(userID), "guest_cart_merged", map[string]any{
		"user_id": userID,
		"merged":  merged,
	})
	return merged, items, nil
}

func activeProduct(ctx context.Context, r *repo.GormRepo, id uint) (*models.Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found or not available")
	}
	if !p.IsActive {
		return nil, newError(ErrNotFound, "Product not found or not available")
	}
	return p, nil
}

func cartKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}
