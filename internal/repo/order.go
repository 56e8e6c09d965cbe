package repo

import (
	"context"

	"github.com/Skotchmaster/petstore/internal/models"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID *uint
	Status models.OrderStatus
	Offset int
	Limit  int
}

// CreateOrder inserts the order and bulk-inserts its items.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Omit("Items.Product").Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (f OrderFilter) scope(db *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Scopes(f.scope).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		Order("created_at DESC").
		Order("id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SetOrderStatus moves the order from one status to another. It reports false
// when the order is no longer in status from.
func (r *GormRepo) SetOrderStatus(ctx context.Context, id uint, from, to models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
