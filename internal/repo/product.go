package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Offset     int
	Limit      int
	CategoryID *uint
	Search     string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	ActiveOnly bool
}

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ActiveOnly {
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]models.Product, 0, f.Limit)
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).
		Preload("Category").
		Order("products.id ASC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductsByIDs returns products in the order of ids, skipping missing rows.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := r.DB.WithContext(ctx).Omit("Category").Create(p).Error; err != nil {
		return err
	}
	return nil
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uint, fields map[string]any) (*models.Product, error) {
	if len(fields) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetProduct(ctx, id)
}

// DeactivateProduct hides the product from listings; order history keeps referencing it.
func (r *GormRepo) DeactivateProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", false).Error
}

// TakeStock decrements stock only when enough is left. It reports false when
// the product is short.
func (r *GormRepo) TakeStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ReturnStock(ctx context.Context, id uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

// EachActiveProduct walks active products in batches, used to rebuild the search index.
func (r *GormRepo) EachActiveProduct(ctx context.Context, batch int, fn func([]models.Product) error) error {
	var items []models.Product
	return r.DB.WithContext(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		FindInBatches(&items, batch, func(tx *gorm.DB, _ int) error {
			return fn(items)
		}).Error
}
