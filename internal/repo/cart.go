package repo

import (
	"context"

	"github.com/Skotchmaster/petstore/internal/models"
	"github.com/Skotchmaster/petstore/pkg/db"
	"gorm.io/gorm"
)

func (r *GormRepo) ListCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, id, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartLine finds the user's line for a product.
func (r *GormRepo) GetCartLine(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// AddToCart increments the (user, product) line or creates it. created is true
// when a new row was inserted. A concurrent first add that wins the insert
// turns this call into an increment.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) (created bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := incrementCartLine(tx, item)
		if err != nil || ok {
			return err
		}

		// The savepoint keeps the outer transaction usable on Postgres after a
		// unique violation.
		err = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Omit("Product").Create(item).Error
		})
		if err == nil {
			created = true
			return nil
		}
		if !db.IsUniqueViolation(err) {
			return err
		}
		item.ID = 0
		ok, err = incrementCartLine(tx, item)
		if err != nil {
			return err
		}
		if !ok {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return created, err
}

func incrementCartLine(tx *gorm.DB, item *models.CartItem) (bool, error) {
	res := tx.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, id, userID uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("quantity", qty).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id, userID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
