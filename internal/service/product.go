package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/internal/repo"
	"github.com/Skotchmaster/petstore/internal/transport"
	"github.com/Skotchmaster/petstore/pkg/events"
	"github.com/Skotchmaster/petstore/pkg/logging"
)

const (
	SearchSourceIndex    = "elasticsearch"
	SearchSourceDatabase = "database"
)

type ProductService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events EventPublisher
}

type SearchResult struct {
	Items  []models.Product
	Total  int64
	Source string
}

func (s *ProductService) List(ctx context.Context, f repo.ProductFilter) ([]models.Product, int64, error) {
	f.ActiveOnly = true
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, 0, newError(ErrValidation, "min_price must not exceed max_price")
	}
	return s.Repo.ListProducts(ctx, f)
}

// Get returns an active product; inactive products are reported as missing.
func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}
	if !p.IsActive {
		return nil, newError(ErrNotFound, "Product not found")
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price == nil || req.Price.IsNegative() {
		return nil, newError(ErrValidation, "Price must be zero or greater")
	}
	if req.Stock < 0 {
		return nil, newError(ErrValidation, "Stock must be zero or greater")
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		Image:       req.Image,
		IsActive:    req.IsActive == nil || *req.IsActive,
		CategoryID:  req.CategoryID,
		Brand:       req.Brand,
		Dimensions:  req.Dimensions,
	}
	if req.Weight != nil {
		p.Weight = decimal.NewNullDecimal(req.Weight.Round(2))
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	created, err := s.Repo.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	s.syncIndex(ctx, created)
	publish(ctx, s.Events, events.TopicProducts, productKey(created.ID), "product_created", productEvent(created))
	return created, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, req transport.UpdateProductRequest) (*models.Product, error) {
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		return nil, notFound(err, "Product not found")
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, newError(ErrValidation, "Product name is required")
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, newError(ErrValidation, "Price must be zero or greater")
		}
		fields["price"] = req.Price.Round(2)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, newError(ErrValidation, "Stock must be zero or greater")
		}
		fields["stock"] = *req.Stock
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *req.CategoryID
	}
	if req.Brand != nil {
		fields["brand"] = *req.Brand
	}
	if req.Weight != nil {
		fields["weight"] = decimal.NewNullDecimal(req.Weight.Round(2))
	}
	if req.Dimensions != nil {
		fields["dimensions"] = *req.Dimensions
	}

	updated, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		return nil, notFound(err, "Product not found")
	}

	s.syncIndex(ctx, updated)
	publish(ctx, s.Events, events.TopicProducts, productKey(id), "product_updated", productEvent(updated))
	return updated, nil
}

// Delete deactivates the product. Order history keeps referencing it.
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Repo.GetProduct(ctx, id); err != nil {
		return notFound(err, "Product not found")
	}
	if err := s.Repo.DeactivateProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Uint("product_id", id).Msg("index_delete_failed")
		}
	}
	publish(ctx, s.Events, events.TopicProducts, productKey(id), "product_deleted", map[string]any{"product_id": id})
	return nil
}

// Search queries the full-text index and falls back to a name match in the
// database when no index is configured or the index fails.
func (s *ProductService) Search(ctx context.Context, q string, offset, limit int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, newError(ErrValidation, "Search query is required")
	}

	if s.Index != nil {
		ids, total, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetProductsByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			active := items[:0]
			for _, p := range items {
				if p.IsActive {
					active = append(active, p)
				}
			}
			return &SearchResult{Items: active, Total: total, Source: SearchSourceIndex}, nil
		}
		logging.FromContext(ctx).Warn().Err(err).Str("query", q).Msg("index_search_failed")
	}

	items, total, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		Offset:     offset,
		Limit:      limit,
		Search:     q,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return &SearchResult{Items: items, Total: total, Source: SearchSourceDatabase}, nil
}

// Reindex pushes every active product to the index and returns how many were sent.
func (s *ProductService) Reindex(ctx context.Context, batch int) (int, error) {
	if s.Index == nil {
		return 0, newError(ErrUnavailable, "Search index is not configured")
	}
	if batch <= 0 {
		batch = 200
	}
	n := 0
	err := s.Repo.EachActiveProduct(ctx, batch, func(items []models.Product) error {
		for i := range items {
			if err := s.Index.IndexProduct(ctx, &items[i]); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func (s *ProductService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrValidation, "Category %d does not exist", *id)
		}
		return err
	}
	return nil
}

func (s *ProductService) syncIndex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	var err error
	if p.IsActive {
		err = s.Index.IndexProduct(ctx, p)
	} else {
		err = s.Index.DeleteProduct(ctx, p.ID)
	}
	if err != nil {
		logging.FromContext(ctx).Warn().Err(err).Uint("product_id", p.ID).Msg("index_sync_failed")
	}
}

func productKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func productEvent(p *models.Product) map[string]any {
	return map[string]any{
		"product_id": p.ID,
		"name":       p.Name,
		"price":      p.Price,
		"stock":      p.Stock,
		"is_active":  p.IsActive,
	}
}
