package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
)

const DefaultGuestCartTTL = 7 * 24 * time.Hour

// GuestCartService keeps anonymous carts in a GuestCartStore keyed by an opaque token.
type GuestCartService struct {
	Repo  *repo.GormRepo
	Store GuestCartStore
	TTL   time.Duration
}

type GuestLine struct {
	Product  *models.Product
	Quantity int
}

type GuestCartView struct {
	Token     string
	Lines     []GuestLine
	ItemCount int
	Total     decimal.Decimal
}

func NewCartToken() string {
	return uuid.NewString()
}

func (s *GuestCartService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultGuestCartTTL
	}
	return s.TTL
}

// View loads the cart with current products. Lines whose product is gone or
// inactive are left out of the view and the totals.
func (s *GuestCartService) View(ctx context.Context, token string) (*GuestCartView, error) {
	token, err := checkToken(token)
	if err != nil {
		return nil, err
	}
	raw, err := s.Store.GuestCart(ctx, token)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &GuestCartView{Token: token, Lines: []GuestLine{}, Total: decimal.Zero}
	for i := range products {
		p := &products[i]
		if !p.IsActive {
			continue
		}
		qty := raw[p.ID]
		view.Lines = append(view.Lines, GuestLine{Product: p, Quantity: qty})
		view.ItemCount += qty
		view.Total = view.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	view.Total = view.Total.Round(2)
	return view, nil
}

func (s *GuestCartService) Add(ctx context.Context, token string, productID uint, qty int) (*GuestCartView, error) {
	token, err := checkToken(token)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, newError(ErrValidation, "Quantity must be at least 1")
	}
	product, err := activeProduct(ctx, s.Repo, productID)
	if err != nil {
		return nil, err
	}
	current, err := s.Store.GuestCart(ctx, token)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock-current[productID] {
		return nil, newError(ErrInsufficientStock, "Insufficient stock")
	}
	if _, err := s.Store.AddGuestCartItem(ctx, token, productID, qty, s.ttl()); err != nil {
		return nil, err
	}
	return s.View(ctx, token)
}

// Set replaces the quantity of a line; zero or less removes it.
func (s *GuestCartService) Set(ctx context.Context, token string, productID uint, qty int) (*GuestCartView, error) {
	token, err := checkToken(token)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		if err := s.Store.RemoveGuestCartItem(ctx, token, productID); err != nil {
			return nil, err
		}
		return s.View(ctx, token)
	}
	product, err := activeProduct(ctx, s.Repo, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock {
		return nil, newError(ErrInsufficientStock, "Insufficient stock")
	}
	if err := s.Store.SetGuestCartItem(ctx, token, productID, qty, s.ttl()); err != nil {
		return nil, err
	}
	return s.View(ctx, token)
}

func (s *GuestCartService) Remove(ctx context.Context, token string, productID uint) (*GuestCartView, error) {
	token, err := checkToken(token)
	if err != nil {
		return nil, err
	}
	if err := s.Store.RemoveGuestCartItem(ctx, token, productID); err != nil {
		return nil, err
	}
	return s.View(ctx, token)
}

func (s *GuestCartService) Clear(ctx context.Context, token string) error {
	token, err := checkToken(token)
	if err != nil {
		return err
	}
	return s.Store.ClearGuestCart(ctx, token)
}

func checkToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", newError(ErrValidation, "Missing X-Cart-Token header")
	}
	if _, err := uuid.Parse(token); err != nil {
		return "", newError(ErrValidation, "Invalid X-Cart-Token header")
	}
	return token, nil
}
